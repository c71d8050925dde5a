package fcs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the decoded events as CSV with a header row of $PnN names.
// It returns ErrNoEvents when Parse was called without readData.
func (f *File) WriteCSV(w io.Writer) error {
	if f.Events == nil {
		return ErrNoEvents
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(f.ParameterNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, f.Events.Cols())
	for i := range f.Events.Rows() {
		for j := range record {
			record[j] = strconv.FormatFloat(f.Events.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv event %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
