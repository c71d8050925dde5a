package fcs

import (
	"fmt"
	"strings"

	"github.com/scu-obit/fcskit/internal/logger"
)

// Option configures Parse.
type Option func(*options)

type options struct {
	log logger.Logger
}

// WithLogger routes recoverable parse conditions to log. By default they are
// only recorded as File.Warnings.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Parse decodes an FCS file held in data. With readData false only the HEADER
// and TEXT segments are decoded and File.Events is nil.
//
// Structural problems abort with an error wrapping one of the package's
// sentinel errors. Recoverable ones (duplicate keywords, a DATA segment whose
// length does not match $TOT) are returned as File.Warnings.
func Parse(data []byte, readData bool, opts ...Option) (*File, error) {
	o := options{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	hdr, warnings, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	delim, kw, textWarnings, err := parseText(data[hdr.TextStart : hdr.TextEnd+1])
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, textWarnings...)

	f := &File{
		Header:    hdr,
		Keywords:  kw,
		delimiter: delim,
	}

	warnings = append(warnings, f.reconcileOffsets()...)

	if f.Parameters, err = parseParameters(kw); err != nil {
		return nil, err
	}

	if readData {
		ev, dataWarnings, err := f.decodeData(data)
		if err != nil {
			return nil, err
		}
		f.Events = ev
		warnings = append(warnings, dataWarnings...)
	}

	f.Warnings = warnings
	for _, w := range warnings {
		o.log.Warn("fcs parse warning", "code", string(w.Code), "detail", w.Message)
	}
	return f, nil
}

// reconcileOffsets replaces header offsets with the $BEGIN*/$END* keyword
// values when those are present and non-zero. Values that cannot be parsed
// are left for decodeData to reject.
func (f *File) reconcileOffsets() []Warning {
	var warnings []Warning
	pairs := []struct {
		key string
		dst *int64
	}{
		{KeyBeginData, &f.Header.DataStart},
		{KeyEndData, &f.Header.DataEnd},
		{KeyBeginAnalysis, &f.Header.AnalysisStart},
		{KeyEndAnalysis, &f.Header.AnalysisEnd},
	}
	for _, p := range pairs {
		v, ok := f.Keywords.Int64(p.key)
		if !ok || v <= 0 {
			continue
		}
		if *p.dst != 0 && *p.dst != v {
			warnings = append(warnings, Warning{
				Code:    WarnOffsetMismatch,
				Message: fmt.Sprintf("HEADER says %d but %s says %d; using %s", *p.dst, p.key, v, p.key),
			})
		}
		*p.dst = v
	}
	return warnings
}

func (f *File) decodeData(data []byte) (*Events, []Warning, error) {
	if f.Header.Version == Version20 {
		return nil, nil, fmt.Errorf("%w: DATA decoding requires FCS3.0 or later, file is %s",
			ErrUnsupportedVersion, f.Header.Version)
	}

	total, err := f.Keywords.MustInt64(KeyTot)
	if err != nil {
		return nil, nil, err
	}
	if total < 0 {
		return nil, nil, &MissingKeywordError{Key: KeyTot, Value: f.Keywords.Value(KeyTot)}
	}
	mode, err := f.Keywords.MustString(KeyMode)
	if err != nil {
		return nil, nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(mode), "L") {
		return nil, nil, fmt.Errorf("%w: $MODE %q, only list mode (L) is supported", ErrUnsupportedMode, mode)
	}
	rawType, err := f.Keywords.MustString(KeyDataType)
	if err != nil {
		return nil, nil, err
	}
	dt, err := parseDataType(rawType)
	if err != nil {
		return nil, nil, err
	}
	rawOrder, err := f.Keywords.MustString(KeyByteOrd)
	if err != nil {
		return nil, nil, err
	}
	order, err := parseByteOrder(rawOrder)
	if err != nil {
		return nil, nil, err
	}
	layout, err := newRecordLayout(dt, f.Parameters)
	if err != nil {
		return nil, nil, err
	}

	for _, key := range []string{KeyBeginData, KeyEndData} {
		if v, ok := f.Keywords.Get(key); ok {
			if _, ok := f.Keywords.Int64(key); !ok {
				return nil, nil, fmt.Errorf("%w: %s %q", ErrMalformedDataOffsets, key, v)
			}
		}
	}

	start, end := f.Header.DataStart, f.Header.DataEnd
	if start == 0 && end == 0 && total == 0 {
		return newEvents(0, len(f.Parameters), nil), nil, nil
	}
	if start <= 0 || end < start || start >= int64(len(data)) {
		return nil, nil, fmt.Errorf("%w: DATA [%d, %d] in file of %d bytes",
			ErrMalformedDataOffsets, start, end, len(data))
	}

	declared := end - start + 1
	available := min(declared, int64(len(data))-start)
	seg := data[start : start+available]

	ev := decodeEvents(seg, int(total), layout, dt, order)

	var warnings []Warning
	expected := total * int64(layout.stride)
	if expected != declared || available < declared {
		warnings = append(warnings, Warning{
			Code: WarnDataLengthMismatch,
			Message: fmt.Sprintf("expected %d bytes for %d events of %d bytes, DATA segment declares %d and %d are available; decoded %d events",
				expected, total, layout.stride, declared, available, ev.Rows()),
		})
	}
	return ev, warnings, nil
}
