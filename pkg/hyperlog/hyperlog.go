// Package hyperlog implements the Hyperlog biexponential display transform
// used for flow cytometry data, and its inverse.
//
// The transform maps data values onto a [0, 1] display scale that is linear
// around zero and logarithmic for large magnitudes. It is parameterized by
// T (top of scale), W (decades of approximate linearity), M (decades covered
// by the display) and A (additional negative decades). The inverse has a
// closed form; the forward direction is solved numerically.
package hyperlog

import (
	"math"
)

const (
	// DefaultDecades is the M used by EstimateParamHeuristic.
	DefaultDecades = 4.0

	taylorLength = 16

	// minWidth keeps the normalized linear width positive so W = 0 stays
	// well defined.
	minWidth = 1e-6
)

// Params holds the four transform parameters.
type Params struct {
	T float64 `json:"t" yaml:"t"`
	W float64 `json:"w" yaml:"w"`
	M float64 `json:"m" yaml:"m"`
	A float64 `json:"a" yaml:"a"`
}

// Validate checks T > 0, M > 0, W >= 0, A >= 0 and A <= M - 2W.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"T", p.T}, {"W", p.W}, {"M", p.M}, {"A", p.A}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ParamError{Field: f.name, Value: f.v, Reason: "is not finite"}
		}
	}
	switch {
	case p.T <= 0:
		return &ParamError{Field: "T", Value: p.T, Reason: "must be positive"}
	case p.M <= 0:
		return &ParamError{Field: "M", Value: p.M, Reason: "must be positive"}
	case p.W < 0:
		return &ParamError{Field: "W", Value: p.W, Reason: "must not be negative"}
	case 2*p.W > p.M:
		return &ParamError{Field: "W", Value: p.W, Reason: "must not exceed M/2"}
	case p.A < 0:
		return &ParamError{Field: "A", Value: p.A, Reason: "must not be negative"}
	case p.A > p.M-2*p.W:
		return &ParamError{Field: "A", Value: p.A, Reason: "must not exceed M - 2W"}
	}
	return nil
}

// Option configures New.
type Option func(*config)

type config struct {
	bins int
}

// WithBins adjusts A so that data zero falls on a bin boundary when the
// display scale is divided into n bins. n <= 0 disables the adjustment.
func WithBins(n int) Option {
	return func(c *config) {
		c.bins = n
	}
}

// Hyperlog is a configured transform. It is immutable and safe for
// concurrent use.
type Hyperlog struct {
	params Params

	a, b, c, f    float64
	w, x0, x1, x2 float64
	xTaylor       float64
	inverseX0     float64
	taylor        [taylorLength]float64
}

// New validates the parameters and precomputes the transform constants.
func New(t, w, m, a float64, opts ...Option) (*Hyperlog, error) {
	return NewFromParams(Params{T: t, W: w, M: m, A: a}, opts...)
}

// NewFromParams is New taking a Params value.
func NewFromParams(p Params, opts ...Option) (*Hyperlog, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.bins > 0 {
		zero := (p.W + p.A) / (p.M + p.A)
		zero = math.Floor(zero*float64(cfg.bins)+0.5) / float64(cfg.bins)
		if zero < 1 {
			p.A = (p.M*zero - p.W) / (1 - zero)
		}
	}

	h := &Hyperlog{params: p}
	h.w = max(p.W/(p.M+p.A), minWidth)
	h.x2 = p.A / (p.M + p.A)
	h.x1 = h.x2 + h.w
	h.x0 = h.x2 + 2*h.w
	h.b = (p.M + p.A) * math.Ln10

	ca := math.Exp(h.b*h.x0) / h.w
	fa := math.Exp(h.b*h.x1) + ca*h.x1
	h.a = p.T / ((math.Exp(h.b) + ca) - fa)
	h.c = ca * h.a
	h.f = fa * h.a

	// Near data zero the closed form loses precision; a series around x1
	// is used instead.
	h.xTaylor = h.x1 + h.w/4
	coef := h.a * math.Exp(h.b*h.x1)
	for i := range h.taylor {
		coef *= h.b / float64(i+1)
		h.taylor[i] = coef
	}
	h.taylor[0] += h.c

	h.inverseX0 = h.inverse(h.x0)
	return h, nil
}

// Params returns the parameters in effect, including any bin adjustment of A.
func (h *Hyperlog) Params() Params {
	return h.params
}

// Transform maps data values to display scale. Transform(T) is exactly 1;
// values above T or below the bottom of scale fall outside [0, 1].
func (h *Hyperlog) Transform(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = h.scale(x)
	}
	return out
}

// InverseTransform maps display scale values back to data values.
func (h *Hyperlog) InverseTransform(ys []float64) []float64 {
	out := make([]float64, len(ys))
	for i, y := range ys {
		out[i] = h.inverse(y)
	}
	return out
}

// TransformValue is Transform for a single value.
func (h *Hyperlog) TransformValue(x float64) float64 {
	return h.scale(x)
}

// InverseValue is InverseTransform for a single value.
func (h *Hyperlog) InverseValue(y float64) float64 {
	return h.inverse(y)
}

// Slope returns the derivative of the inverse transform at display value y.
func (h *Hyperlog) Slope(y float64) float64 {
	if y < h.x1 {
		y = 2*h.x1 - y
	}
	return h.a*h.b*math.Exp(h.b*y) + h.c
}

func (h *Hyperlog) inverse(y float64) float64 {
	negative := y < h.x1
	if negative {
		y = 2*h.x1 - y
	}
	var v float64
	if y < h.xTaylor {
		v = h.taylorSeries(y)
	} else {
		v = (h.a*math.Exp(h.b*y) + h.c*y) - h.f
	}
	if negative {
		return -v
	}
	return v
}

func (h *Hyperlog) taylorSeries(y float64) float64 {
	x := y - h.x1
	sum := h.taylor[taylorLength-1] * x
	for i := taylorLength - 2; i >= 0; i-- {
		sum = (sum + h.taylor[i]) * x
	}
	return sum
}
