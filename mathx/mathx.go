package mathx

type Float interface {
	~float32 | ~float64
}

func CentralDifference[X Float](plusY, minusY, h X) X {
	return (plusY - minusY) / (2.0 * h)
}

func Clip[X Float](x, lo, hi X) X {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// NumericalGradient estimates df/dxs by central differences. xs is restored before returning.
func NumericalGradient[X Float](xs []X, h X, f func([]X) X) []X {
	grad := make([]X, len(xs))
	for i := range xs {
		tmp := xs[i]
		xs[i] = tmp + h
		plusY := f(xs)

		xs[i] = tmp - h
		minusY := f(xs)

		grad[i] = CentralDifference(plusY, minusY, h)
		xs[i] = tmp
	}
	return grad
}
