package dense

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/tensor/2d"
	"github.com/sw965/ganblr/blas32/vector"
	"github.com/sw965/omw/encoding/jsonx"
	"gonum.org/v1/gonum/blas/blas32"
)

type Initializer func(rows, cols int, rng *rand.Rand) blas32.General

var HeInitializer Initializer = tensor2d.NewHe

// GlorotUniformInitializer matches the usual default for dense layers.
var GlorotUniformInitializer Initializer = tensor2d.NewGlorotUniform

type Parameter struct {
	Weight blas32.General
	Bias   blas32.Vector
}

func emptyParameter() Parameter {
	return Parameter{
		Weight: blas32.General{Rows: 0, Cols: 0, Stride: 0, Data: []float32{}},
		Bias:   blas32.Vector{N: 0, Inc: 0, Data: []float32{}},
	}
}

func (p *Parameter) NewGradZerosLike() GradBuffer {
	return GradBuffer{
		Weight: tensor2d.NewZerosLike(p.Weight),
		Bias:   vector.NewZerosLike(p.Bias),
	}
}

type Parameters []Parameter

func LoadParametersJSON(path string) (Parameters, error) {
	return jsonx.Load[Parameters](path)
}

func (ps Parameters) SaveJSON(path string) error {
	return jsonx.Save[Parameters](ps, path)
}

// Views exposes the backing slices of every non-empty weight and bias so an
// optimizer can update them in place.
func (ps Parameters) Views() [][]float32 {
	views := make([][]float32, 0, 2*len(ps))
	for _, p := range ps {
		if len(p.Weight.Data) != 0 {
			views = append(views, p.Weight.Data)
		}
		if len(p.Bias.Data) != 0 {
			views = append(views, p.Bias.Data)
		}
	}
	return views
}

// CopyFrom overwrites ps with src. Shapes must match layer by layer.
func (ps Parameters) CopyFrom(src Parameters) error {
	if len(ps) != len(src) {
		return errors.Errorf("dense: %d layers but %d parameters given", len(ps), len(src))
	}
	for i := range ps {
		if !tensor2d.SameShape(ps[i].Weight, src[i].Weight) {
			return errors.Errorf("dense: layer %d weight is %dx%d but %dx%d given",
				i, ps[i].Weight.Rows, ps[i].Weight.Cols, src[i].Weight.Rows, src[i].Weight.Cols)
		}
		if ps[i].Bias.N != src[i].Bias.N {
			return errors.Errorf("dense: layer %d bias has %d entries but %d given", i, ps[i].Bias.N, src[i].Bias.N)
		}
		copy(ps[i].Weight.Data, src[i].Weight.Data)
		copy(ps[i].Bias.Data, src[i].Bias.Data)
	}
	return nil
}
