package fcs

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// HeaderSize is the length of the fixed part of the HEADER segment.
	HeaderSize = 58

	versionSize = 6
	fieldWidth  = 8

	offTextStart     = 10
	offTextEnd       = 18
	offDataStart     = 26
	offDataEnd       = 34
	offAnalysisStart = 42
	offAnalysisEnd   = 50
	offOtherStart    = 58
)

const (
	Version20 = "FCS2.0"
	Version30 = "FCS3.0"
	Version31 = "FCS3.1"
)

// Header holds the segment offsets found in the HEADER. Offsets are absolute
// byte positions, inclusive on both ends. DATA and ANALYSIS offsets larger
// than 99,999,999 are written as 0 and supplied by TEXT keywords instead.
type Header struct {
	Version       string
	TextStart     int64
	TextEnd       int64
	DataStart     int64
	DataEnd       int64
	AnalysisStart int64
	AnalysisEnd   int64
	OtherStart    int64
}

func supportedVersion(v string) bool {
	switch v {
	case Version20, Version30, Version31:
		return true
	default:
		return false
	}
}

func decodeHeader(data []byte) (Header, []Warning, error) {
	if len(data) < versionSize {
		return Header{}, nil, fmt.Errorf("%w: file is %d bytes", ErrUnsupportedVersion, len(data))
	}
	version := string(data[:versionSize])
	if !supportedVersion(version) {
		return Header{}, nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	if len(data) < HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedHeader, HeaderSize, len(data))
	}

	h := Header{Version: version}
	var blank bool
	var err error

	if h.TextStart, blank, err = headerField(data, offTextStart); err != nil || blank {
		return Header{}, nil, fmt.Errorf("%w: TEXT start %q", ErrMalformedHeader, rawField(data, offTextStart))
	}
	if h.TextEnd, blank, err = headerField(data, offTextEnd); err != nil || blank {
		return Header{}, nil, fmt.Errorf("%w: TEXT end %q", ErrMalformedHeader, rawField(data, offTextEnd))
	}
	if h.TextStart == 0 {
		return Header{}, nil, fmt.Errorf("%w: TEXT segment offset is zero", ErrMalformedHeader)
	}

	fields := []struct {
		off  int
		name string
		dst  *int64
	}{
		{offDataStart, "DATA start", &h.DataStart},
		{offDataEnd, "DATA end", &h.DataEnd},
		{offAnalysisStart, "ANALYSIS start", &h.AnalysisStart},
		{offAnalysisEnd, "ANALYSIS end", &h.AnalysisEnd},
	}
	for _, fld := range fields {
		v, _, err := headerField(data, fld.off)
		if err != nil {
			return Header{}, nil, fmt.Errorf("%w: %s %q", ErrMalformedHeader, fld.name, rawField(data, fld.off))
		}
		*fld.dst = v
	}

	// The OTHER field only exists when TEXT does not start right after the
	// fixed header; otherwise those bytes already belong to TEXT.
	if h.TextStart >= offOtherStart+fieldWidth && len(data) >= offOtherStart+fieldWidth {
		if v, _, err := headerField(data, offOtherStart); err == nil {
			h.OtherStart = v
		}
	}

	var warnings []Warning
	if h.DataStart != 0 && h.TextStart > h.DataStart {
		h.TextStart, h.DataStart = h.DataStart, h.TextStart
		h.TextEnd, h.DataEnd = h.DataEnd, h.TextEnd
		warnings = append(warnings, Warning{
			Code:    WarnSwappedSegments,
			Message: "HEADER lists DATA before TEXT; offsets swapped",
		})
	}

	if h.TextEnd < h.TextStart || h.TextEnd >= int64(len(data)) {
		return Header{}, nil, fmt.Errorf("%w: TEXT segment [%d, %d] outside file of %d bytes",
			ErrMalformedHeader, h.TextStart, h.TextEnd, len(data))
	}

	return h, warnings, nil
}

func rawField(data []byte, off int) string {
	return string(data[off : off+fieldWidth])
}

// headerField parses one right-justified ASCII integer. A field of only
// spaces is reported as blank with value 0.
func headerField(data []byte, off int) (int64, bool, error) {
	s := strings.TrimSpace(rawField(data, off))
	if s == "" {
		return 0, true, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, err
	}
	if v < 0 {
		return 0, false, fmt.Errorf("negative offset %d", v)
	}
	return v, false, nil
}
