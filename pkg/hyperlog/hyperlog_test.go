package hyperlog

import (
	"errors"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-6

var sample = []float64{-10.0, -5.0, -1.0, 0.0, 0.3, 1.0, 3.0, 10.0, 100.0, 1000.0}

func TestTransformFixtures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Params
		want   []float64
	}{
		{
			name:   "no negative decades",
			params: Params{T: 1000, W: 1, M: 4, A: 0},
			want: []float64{0.083554, 0.155868, 0.229477, 0.250000, 0.256239,
				0.270523, 0.309091, 0.416446, 0.731875, 1.000000},
		},
		{
			name:   "one negative decade",
			params: Params{T: 1000, W: 1, M: 4, A: 1},
			want: []float64{0.266843, 0.324695, 0.383581, 0.400000, 0.404991,
				0.416419, 0.447273, 0.533157, 0.7855, 1.000000},
		},
		{
			name:   "narrow linear region",
			params: Params{T: 1000, W: 0.01, M: 4, A: 1},
			want: []float64{0.017447, 0.106439, 0.182593, 0.202000, 0.207833,
				0.221407, 0.259838, 0.386553, 0.774211, 1.000000},
		},
		{
			name:   "top of scale from data",
			params: Params{T: Max(sample), W: 0.01, M: 4, A: 1},
			want: []float64{0.017447, 0.106439, 0.182593, 0.202000, 0.207833,
				0.221407, 0.259838, 0.386553, 0.774211, 1.000000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, err := NewFromParams(tt.params)
			require.NoError(t, err)

			got := h.Transform(sample)
			require.Len(t, got, len(sample))
			assert.InDeltaSlice(t, tt.want, got, tol)

			back := h.InverseTransform(got)
			assert.InDeltaSlice(t, sample, back, tol)
		})
	}
}

func TestTransformTopOfScaleIsOne(t *testing.T) {
	t.Parallel()

	for _, p := range []Params{
		{T: 1000, W: 1, M: 4, A: 0},
		{T: 262144, W: 0.5, M: 4.5, A: 0},
		{T: 10, W: 0, M: 4, A: 2},
		{T: 1, W: 0.5, M: 1, A: 0},
	} {
		h, err := NewFromParams(p)
		require.NoError(t, err)
		assert.Equal(t, 1.0, h.TransformValue(p.T), "%+v", p)
		assert.InDelta(t, p.T, h.InverseValue(1), 1e-9*p.T, "%+v", p)
	}
}

func TestTransformMonotone(t *testing.T) {
	t.Parallel()

	h, err := New(1000, 1, 4, 1)
	require.NoError(t, err)

	xs := []float64{-1e6, -1e3, -1, -1e-3, 0, 1e-9, 1e-3, 1, 500, 1e4, 1e7}
	ys := h.Transform(xs)
	assert.True(t, sort.Float64sAreSorted(ys), "not monotone: %v", ys)
	for i := 1; i < len(ys); i++ {
		assert.Less(t, ys[i-1], ys[i])
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, p := range []Params{
		{T: 1000, W: 1, M: 4, A: 0},
		{T: 1000, W: 0.3, M: 4, A: 1},
		{T: 262144, W: 0.5, M: 4.5, A: 0},
		{T: 1000, W: 0, M: 4, A: 0},
	} {
		h, err := NewFromParams(p)
		require.NoError(t, err)
		for _, x := range sample {
			y := h.TransformValue(x)
			assert.InDelta(t, x, h.InverseValue(y), tol, "%+v x=%g", p, x)
		}
	}
}

func TestTransformSpecialValues(t *testing.T) {
	t.Parallel()

	h, err := New(1000, 1, 4, 0)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(h.TransformValue(math.NaN())))
	assert.True(t, math.IsInf(h.TransformValue(math.Inf(1)), 1))
	assert.True(t, math.IsInf(h.TransformValue(math.Inf(-1)), -1))
	assert.InDelta(t, 0.25, h.TransformValue(0), 1e-12)
	assert.Empty(t, h.Transform(nil))
	assert.Empty(t, h.InverseTransform([]float64{}))
}

func TestSlope(t *testing.T) {
	t.Parallel()

	h, err := New(1000, 1, 4, 1)
	require.NoError(t, err)

	for _, y := range []float64{0.3, 0.45, 0.8} {
		const d = 1e-6
		numeric := (h.InverseValue(y+d) - h.InverseValue(y-d)) / (2 * d)
		assert.InEpsilon(t, numeric, h.Slope(y), 1e-4, "y=%g", y)
	}
	// Symmetric around data zero.
	x1 := h.TransformValue(0)
	assert.InDelta(t, h.Slope(x1+0.1), h.Slope(x1-0.1), 1e-9)
}

func TestWithBins(t *testing.T) {
	t.Parallel()

	const bins = 256
	h, err := New(1000, 1, 4, 1, WithBins(bins))
	require.NoError(t, err)

	p := h.Params()
	assert.InDelta(t, 1000, p.T, 0)
	assert.NotEqual(t, 1.0, p.A)

	zero := h.TransformValue(0) * bins
	assert.InDelta(t, math.Round(zero), zero, 1e-9)

	plain, err := New(1000, 1, 4, 1, WithBins(0))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, plain.Params().A, 0)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		p     Params
		field string
	}{
		{"zero T", Params{T: 0, W: 1, M: 4, A: 0}, "T"},
		{"negative T", Params{T: -1, W: 1, M: 4, A: 0}, "T"},
		{"zero M", Params{T: 1, W: 0, M: 0, A: 0}, "M"},
		{"negative W", Params{T: 1, W: -0.1, M: 4, A: 0}, "W"},
		{"W above M/2", Params{T: 1, W: 2.5, M: 4, A: 0}, "W"},
		{"negative A", Params{T: 1, W: 1, M: 4, A: -1}, "A"},
		{"A above M-2W", Params{T: 1, W: 1, M: 4, A: 2.5}, "A"},
		{"NaN", Params{T: math.NaN(), W: 1, M: 4, A: 0}, "T"},
		{"Inf", Params{T: 1, W: 1, M: math.Inf(1), A: 0}, "M"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewFromParams(tt.p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))

			var perr *ParamError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.field, perr.Field)
		})
	}

	for _, p := range []Params{
		{T: 1000, W: 1, M: 4, A: 2},
		{T: 1000, W: 0, M: 4, A: 4},
		{T: 1000, W: 2, M: 4, A: 0},
	} {
		assert.NoError(t, p.Validate(), "%+v", p)
	}
}

func TestMinMaxBounds(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, -10, Min(sample), tol)
	assert.InDelta(t, 1000, Max(sample), tol)
	lo, hi := Bounds(sample)
	assert.InDelta(t, -10, lo, tol)
	assert.InDelta(t, 1000, hi, tol)

	assert.True(t, math.IsNaN(Min(nil)))
	assert.True(t, math.IsNaN(Max([]float64{})))
}

func TestColumnReductions(t *testing.T) {
	t.Parallel()

	n := mat.NewDense(10, 2, nil)
	n.Set(2, 0, 5)
	n.Set(7, 1, 2)

	assert.InDeltaSlice(t, []float64{5, 2}, ColumnMax(n), tol)
	assert.InDeltaSlice(t, []float64{0, 0}, ColumnMin(n), tol)

	wide := mat.NewDense(2, 3, []float64{
		1, -4, 9,
		3, 8, -9,
	})
	assert.Equal(t, []float64{3, 8, 9}, ColumnMax(wide))
	assert.Equal(t, []float64{1, -4, -9}, ColumnMin(wide))
	assert.Nil(t, ColumnMax(nil))
}

func TestScale(t *testing.T) {
	t.Parallel()

	ys := []float64{0, 0.5, 1}
	assert.Equal(t, []float64{0, 500, 1000}, Scale(ys, 1000))
	assert.Equal(t, []float64{0, 0.5, 1}, ys)
}

func TestEstimateParamHeuristic(t *testing.T) {
	t.Parallel()

	lo, hi := Bounds(sample)
	for _, p := range []Params{EstimateParamHeuristic(lo, hi), EstimateParams(sample)} {
		assert.InDelta(t, 1000.0, p.T, 1e-12)
		assert.InDelta(t, 0.3, p.W, 1e-12)
		assert.InDelta(t, 4.0, p.M, 0)
		assert.InDelta(t, 1.0, p.A, 1e-12)
	}

	p := EstimateParamHeuristic(-5, 1000)
	assert.InDelta(t, 0, p.A, 0)

	// Extreme negative range is clamped to a valid A.
	p = EstimateParamHeuristic(-1e9, 1e5)
	assert.NoError(t, p.Validate())
	assert.InDelta(t, p.M-2*p.W, p.A, 1e-12)

	p = EstimateParamHeuristic(0, 0.5)
	assert.InDelta(t, 0, p.W, 0)
	_, err := NewFromParams(EstimateParamHeuristic(-1, 0))
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestEstimateParamsDecades(t *testing.T) {
	t.Parallel()

	p := EstimateParamsDecades(sample, 5)
	assert.InDelta(t, 5.0, p.M, 0)
	assert.InDelta(t, 0.3, p.W, 1e-12)
	assert.InDelta(t, 1.0, p.A, 1e-12)

	assert.Equal(t, EstimateParams(sample), EstimateParamsDecades(sample, 0))

	// A narrow display clamps the negative decades.
	p = EstimateParamsDecades([]float64{-1e6, 1e4}, 1)
	assert.NoError(t, p.Validate())
	assert.InDelta(t, 0.2, p.A, 1e-12)
}

func TestConcurrentUse(t *testing.T) {
	t.Parallel()

	h, err := New(1000, 1, 4, 1)
	require.NoError(t, err)
	want := h.Transform(sample)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			assert.Equal(t, want, h.Transform(sample))
		})
	}
	wg.Wait()
}
