package classifier

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
)

// RandomForest wraps golearn's bagged random trees. golearn's ID3 refuses to
// split a grid with a single feature column, so every tree is given at least
// two columns and single-feature input is padded with a constant column.
type RandomForest struct {
	ForestSize int

	rf        *ensemble.RandomForest
	attrs     []base.Attribute
	pad       base.Attribute
	classAttr *base.CategoricalAttribute
}

func NewRandomForest() *RandomForest {
	return &RandomForest{ForestSize: 100}
}

// instances packs x and y into a golearn grid. y may be nil for prediction,
// golearn still expects the class column to exist.
func (c *RandomForest) instances(x [][]int, y []int) (*base.DenseInstances, error) {
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(c.attrs))
	for j, attr := range c.attrs {
		specs[j] = inst.AddAttribute(attr)
	}
	numFeatures := len(c.attrs)
	if c.pad != nil {
		numFeatures--
	}
	classSpec := inst.AddAttribute(c.classAttr)
	if err := inst.AddClassAttribute(c.classAttr); err != nil {
		return nil, err
	}
	if err := inst.Extend(len(x)); err != nil {
		return nil, err
	}

	for i, row := range x {
		if len(row) != numFeatures {
			return nil, errors.Errorf("classifier: row %d has %d features, want %d", i, len(row), numFeatures)
		}
		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(float64(v)))
		}
		if c.pad != nil {
			inst.Set(specs[numFeatures], i, base.PackFloatToBytes(0.0))
		}
		if y != nil {
			inst.Set(classSpec, i, c.classAttr.GetSysValFromString(strconv.Itoa(y[i])))
		}
	}
	return inst, nil
}

func (c *RandomForest) Fit(x [][]int, y []int) error {
	if err := checkXY(x, y); err != nil {
		return err
	}
	numFeatures := len(x[0])
	c.attrs = make([]base.Attribute, numFeatures, numFeatures+1)
	for j := range c.attrs {
		c.attrs[j] = base.NewFloatAttribute("x" + strconv.Itoa(j))
	}
	c.pad = nil
	if numFeatures == 1 {
		c.pad = base.NewFloatAttribute("pad")
		c.attrs = append(c.attrs, c.pad)
	}
	c.classAttr = base.NewCategoricalAttribute()
	c.classAttr.SetName("class")

	inst, err := c.instances(x, y)
	if err != nil {
		return err
	}

	features := min(len(c.attrs), max(2, int(math.Sqrt(float64(numFeatures)))))
	rf := ensemble.NewRandomForest(c.ForestSize, features)
	if err := rf.Fit(inst); err != nil {
		return errors.Wrap(err, "classifier: random forest fit")
	}
	c.rf = rf
	return nil
}

func (c *RandomForest) Predict(x [][]int) ([]int, error) {
	if c.rf == nil {
		return nil, errors.New("classifier: predict before fit")
	}
	inst, err := c.instances(x, nil)
	if err != nil {
		return nil, err
	}
	grid, err := c.rf.Predict(inst)
	if err != nil {
		return nil, errors.Wrap(err, "classifier: random forest predict")
	}

	pred := make([]int, len(x))
	for i := range pred {
		label, err := strconv.Atoi(base.GetClass(grid, i))
		if err != nil {
			return nil, errors.Wrapf(err, "classifier: row %d", i)
		}
		pred[i] = label
	}
	return pred, nil
}
