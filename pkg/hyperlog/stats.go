package hyperlog

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Min returns the smallest value in xs, or NaN if xs is empty.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return floats.Min(xs)
}

// Max returns the largest value in xs, or NaN if xs is empty.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return floats.Max(xs)
}

// Bounds returns Min and Max of xs.
func Bounds(xs []float64) (float64, float64) {
	return Min(xs), Max(xs)
}

// ColumnMin returns the minimum of every column of m.
func ColumnMin(m mat.Matrix) []float64 {
	return reduceColumns(m, floats.Min)
}

// ColumnMax returns the maximum of every column of m.
func ColumnMax(m mat.Matrix) []float64 {
	return reduceColumns(m, floats.Max)
}

func reduceColumns(m mat.Matrix, reduce func([]float64) float64) []float64 {
	if m == nil {
		return nil
	}
	rows, cols := m.Dims()
	out := make([]float64, cols)
	if rows == 0 {
		for j := range out {
			out[j] = math.NaN()
		}
		return out
	}
	col := make([]float64, rows)
	for j := range out {
		out[j] = reduce(mat.Col(col, j, m))
	}
	return out
}

// Scale multiplies every value of ys by f. It brings a transformed column
// back to the data range when f is the transform's top of scale.
func Scale(ys []float64, f float64) []float64 {
	out := make([]float64, len(ys))
	floats.ScaleTo(out, f, ys)
	return out
}

// EstimateParamHeuristic derives transform parameters from the data range
// [lo, hi]: T is hi, M is DefaultDecades, W is a tenth of the decades below
// T and A covers the negative decades when lo reaches -10 or below.
// W and A are clamped so the result always satisfies Params.Validate when
// hi > 0.
func EstimateParamHeuristic(lo, hi float64) Params {
	return estimate(lo, hi, DefaultDecades)
}

// EstimateParams is EstimateParamHeuristic over the bounds of xs.
func EstimateParams(xs []float64) Params {
	return EstimateParamHeuristic(Bounds(xs))
}

// EstimateParamsDecades is EstimateParams for a display spanning m decades.
// m <= 0 selects DefaultDecades.
func EstimateParamsDecades(xs []float64, m float64) Params {
	if !(m > 0) {
		m = DefaultDecades
	}
	lo, hi := Bounds(xs)
	return estimate(lo, hi, m)
}

func estimate(lo, hi, m float64) Params {
	p := Params{T: hi, M: m}
	if hi > 1 {
		p.W = math.Log10(hi) / 10
	}
	p.W = clamp(p.W, 0, p.M/2)
	if lo <= -10 {
		p.A = math.Log10(math.Abs(lo))
	}
	p.A = clamp(p.A, 0, p.M-2*p.W)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
