package fcs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Events is the decoded event matrix: one row per event, one column per
// parameter in file order. It is never modified after Parse returns.
type Events struct {
	rows, cols int
	// dense is nil when rows == 0; gonum does not allow empty matrices.
	dense *mat.Dense
}

func newEvents(rows, cols int, values []float64) *Events {
	ev := &Events{rows: rows, cols: cols}
	if rows > 0 && cols > 0 {
		ev.dense = mat.NewDense(rows, cols, values)
	}
	return ev
}

// Rows returns the number of decoded events.
func (e *Events) Rows() int { return e.rows }

// Cols returns the number of parameters.
func (e *Events) Cols() int { return e.cols }

// At returns the value of parameter j for event i. It panics on out of range
// indices, like slice indexing.
func (e *Events) At(i, j int) float64 {
	if i < 0 || i >= e.rows || j < 0 || j >= e.cols {
		panic(fmt.Sprintf("fcs: index (%d, %d) out of range for %dx%d events", i, j, e.rows, e.cols))
	}
	return e.dense.At(i, j)
}

// Row returns a copy of event i.
func (e *Events) Row(i int) []float64 {
	if i < 0 || i >= e.rows {
		panic(fmt.Sprintf("fcs: row %d out of range for %d events", i, e.rows))
	}
	return mat.Row(nil, i, e.dense)
}

// Column returns a copy of all values of parameter j (0-based).
func (e *Events) Column(j int) []float64 {
	if j < 0 || j >= e.cols {
		panic(fmt.Sprintf("fcs: column %d out of range for %d parameters", j, e.cols))
	}
	if e.rows == 0 {
		return []float64{}
	}
	return mat.Col(nil, j, e.dense)
}

// SampledColumn returns at most n values of parameter j. With n <= 0 or n
// larger than the event count all values are returned. When sampled is true
// the values are taken with a constant stride across all events, otherwise
// the first n events are used.
func (e *Events) SampledColumn(j, n int, sampled bool) []float64 {
	col := e.Column(j)
	if n <= 0 || n >= len(col) {
		return col
	}
	step := 1
	if sampled {
		step = max(len(col)/n, 1)
	}
	out := make([]float64, 0, n)
	for i := 0; i < len(col) && len(out) < n; i += step {
		out = append(out, col[i])
	}
	return out
}

// ColumnBounds returns the minimum and maximum of parameter j, or NaN for
// both when there are no events.
func (e *Events) ColumnBounds(j int) (float64, float64) {
	col := e.Column(j)
	if len(col) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(col), floats.Max(col)
}

// Matrix returns a read-only view of the events, or nil when there are none.
func (e *Events) Matrix() mat.Matrix {
	if e.dense == nil {
		return nil
	}
	return readOnly{e.dense}
}

// readOnly hides the concrete *mat.Dense so callers cannot type-assert their
// way into mutating the events.
type readOnly struct {
	m mat.Matrix
}

func (r readOnly) Dims() (int, int)    { return r.m.Dims() }
func (r readOnly) At(i, j int) float64 { return r.m.At(i, j) }
func (r readOnly) T() mat.Matrix       { return mat.Transpose{Matrix: r} }
