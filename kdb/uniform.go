package kdb

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AddUniform returns a copy of table whose columns are safe to treat as
// distributions. A column summing to zero becomes uniform over the rows.
// Otherwise zero entries are raised to noise and the column is
// renormalized when noise is positive.
func AddUniform(table *mat.Dense, noise float64) *mat.Dense {
	rows, cols := table.Dims()
	out := mat.DenseCopyOf(table)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, out)
		sum := floats.Sum(col)
		if sum == 0.0 {
			for i := range col {
				col[i] = 1.0 / float64(rows)
			}
			out.SetCol(j, col)
			continue
		}
		if noise <= 0.0 {
			continue
		}
		for i, v := range col {
			if v == 0.0 {
				col[i] = noise
			}
		}
		floats.Scale(1.0/floats.Sum(col), col)
		out.SetCol(j, col)
	}
	return out
}
