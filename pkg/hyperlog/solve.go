package hyperlog

import "math"

const (
	epsilon       = 1e-14
	maxIterations = 20
	// maxExpansions bounds the search for an upper bracket.
	maxExpansions = 64
)

// scale solves inverse(x) = value for x. The inverse is monotone increasing,
// so the root is bracketed and Halley steps that leave the bracket are
// replaced by bisection. If the tolerance is not reached the best estimate
// is returned.
func (h *Hyperlog) scale(value float64) float64 {
	switch {
	case math.IsNaN(value):
		return value
	case math.IsInf(value, 0):
		return value
	case value == 0:
		return h.x1
	case value == h.params.T:
		return 1
	}

	negative := value < 0
	if negative {
		value = -value
	}

	var x float64
	if value < h.inverseX0 {
		x = h.x1 + value*h.w/h.inverseX0
	} else {
		x = math.Log(value/h.a) / h.b
	}

	lo, hi := h.x1, h.x1+2*max(x-h.x1, h.w)
	for range maxExpansions {
		if h.inverse(hi) >= value {
			break
		}
		hi = h.x1 + 2*(hi-h.x1)
	}
	if x <= lo || x >= hi {
		x = (lo + hi) / 2
	}

	tolerance := 3 * epsilon
	if x > 1 {
		tolerance = 3 * x * epsilon
	}

	for range maxIterations {
		ae2bx := h.a * math.Exp(h.b*x)
		var y float64
		if x < h.xTaylor {
			y = h.taylorSeries(x) - value
		} else {
			y = (ae2bx + h.c*x) - (h.f + value)
		}
		if y == 0 {
			break
		}
		if y < 0 {
			lo = x
		} else {
			hi = x
		}

		abe2bx := h.b * ae2bx
		dy := abe2bx + h.c
		ddy := h.b * abe2bx
		delta := y / (dy * (1 - y*ddy/(2*dy*dy)))

		if math.Abs(delta) < tolerance {
			x -= delta
			break
		}

		x -= delta
		if math.IsNaN(x) || x <= lo || x >= hi {
			x = (lo + hi) / 2
		}
		if hi-lo < tolerance {
			break
		}
	}

	if negative {
		return 2*h.x1 - x
	}
	return x
}
