package dense

import (
	"github.com/sw965/ganblr/blas32/tensor/2d"
	"gonum.org/v1/gonum/blas/blas32"
)

type GradBuffer struct {
	Weight blas32.General
	Bias   blas32.Vector
}

func (g *GradBuffer) Axpy(alpha float32, x *GradBuffer) {
	if x.Weight.Rows != 0 {
		tensor2d.Axpy(alpha, x.Weight, g.Weight)
	}

	if x.Bias.N != 0 {
		blas32.Axpy(alpha, x.Bias, g.Bias)
	}
}

func (g *GradBuffer) Scal(alpha float32) {
	if g.Weight.Rows != 0 {
		tensor2d.Scal(alpha, g.Weight)
	}

	if g.Bias.N != 0 {
		blas32.Scal(alpha, g.Bias)
	}
}

type GradBuffers []GradBuffer

func (gs GradBuffers) Axpy(alpha float32, xs GradBuffers) {
	for i := range gs {
		gs[i].Axpy(alpha, &xs[i])
	}
}

func (gs GradBuffers) Scal(alpha float32) {
	for i := range gs {
		gs[i].Scal(alpha)
	}
}

// Views lists the backing slices in the same order as Parameters.Views.
func (gs GradBuffers) Views() [][]float32 {
	views := make([][]float32, 0, 2*len(gs))
	for _, g := range gs {
		if len(g.Weight.Data) != 0 {
			views = append(views, g.Weight.Data)
		}
		if len(g.Bias.Data) != 0 {
			views = append(views, g.Bias.Data)
		}
	}
	return views
}
