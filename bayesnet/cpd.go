package bayesnet

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

var ErrStructuralMismatch = errors.New("bayesnet: structural mismatch")

// TabularCPD is P(Variable | Evidence...) as a table of Cardinality rows and
// one column per evidence assignment. Columns are ordered row-major over
// the evidence with the first evidence variable most significant.
type TabularCPD struct {
	Variable     string
	Cardinality  int
	Values       *mat.Dense
	Evidence     []string
	EvidenceCard []int
}

func NewTabularCPD(variable string, card int, values *mat.Dense, evidence []string, evidenceCard []int) (*TabularCPD, error) {
	if card <= 0 {
		return nil, errors.Wrapf(ErrStructuralMismatch, "%s: cardinality %d", variable, card)
	}
	if len(evidence) != len(evidenceCard) {
		return nil, errors.Wrapf(ErrStructuralMismatch, "%s: %d evidence variables but %d cardinalities", variable, len(evidence), len(evidenceCard))
	}

	seen := map[string]struct{}{variable: {}}
	cols := 1
	for i, e := range evidence {
		if _, ok := seen[e]; ok {
			return nil, errors.Wrapf(ErrStructuralMismatch, "%s: evidence %s repeated or equal to the variable", variable, e)
		}
		seen[e] = struct{}{}
		if evidenceCard[i] <= 0 {
			return nil, errors.Wrapf(ErrStructuralMismatch, "%s: evidence %s has cardinality %d", variable, e, evidenceCard[i])
		}
		cols *= evidenceCard[i]
	}

	r, c := values.Dims()
	if r != card || c != cols {
		return nil, errors.Wrapf(ErrStructuralMismatch, "%s: values are %dx%d, want %dx%d", variable, r, c, card, cols)
	}

	return &TabularCPD{
		Variable:     variable,
		Cardinality:  card,
		Values:       mat.DenseCopyOf(values),
		Evidence:     append([]string{}, evidence...),
		EvidenceCard: append([]int{}, evidenceCard...),
	}, nil
}

// ColumnIndex maps evidence values, ordered like Evidence, to a column.
func (c *TabularCPD) ColumnIndex(assignment []int) int {
	col := 0
	for i, v := range assignment {
		col = col*c.EvidenceCard[i] + v
	}
	return col
}

func (c *TabularCPD) Distribution(col int) []float64 {
	return mat.Col(nil, col, c.Values)
}

func (c *TabularCPD) checkStochastic(tol float64) error {
	_, cols := c.Values.Dims()
	for j := 0; j < cols; j++ {
		dist := c.Distribution(j)
		if floats.Min(dist) < 0.0 {
			return errors.Wrapf(ErrStructuralMismatch, "%s: column %d has a negative probability", c.Variable, j)
		}
		if sum := floats.Sum(dist); !scalar.EqualWithinAbs(sum, 1.0, tol) {
			return errors.Wrapf(ErrStructuralMismatch, "%s: column %d sums to %g", c.Variable, j, sum)
		}
	}
	return nil
}
