package fcs

import (
	"fmt"
	"strings"
)

// valueCutset is trimmed from keys and values. It deliberately leaves out
// form feed, the most common delimiter.
const valueCutset = " \t\r\n\x00"

// splitText splits a TEXT segment into fields. The first byte is the
// delimiter; a doubled delimiter is an escaped literal delimiter. A trailing
// unterminated field is kept unless it is only padding.
func splitText(seg []byte) (byte, []string, error) {
	if len(seg) < 1 {
		return 0, nil, fmt.Errorf("%w: empty segment", ErrMalformedTextSegment)
	}
	delim := seg[0]

	var (
		fields []string
		cur    strings.Builder
	)
	i := 1
	for i < len(seg) {
		c := seg[i]
		if c != delim {
			cur.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(seg) && seg[i+1] == delim {
			cur.WriteByte(delim)
			i += 2
			continue
		}
		fields = append(fields, cur.String())
		cur.Reset()
		i++
	}
	if rest := cur.String(); strings.Trim(rest, valueCutset) != "" {
		fields = append(fields, rest)
	}
	return delim, fields, nil
}

func parseText(seg []byte) (byte, *Keywords, []Warning, error) {
	delim, fields, err := splitText(seg)
	if err != nil {
		return 0, nil, nil, err
	}
	if len(fields)%2 != 0 {
		return 0, nil, nil, fmt.Errorf("%w: odd number of fields (%d) after delimiter %q",
			ErrMalformedTextSegment, len(fields), delim)
	}

	kw := newKeywords(len(fields) / 2)
	var warnings []Warning
	for i := 0; i < len(fields); i += 2 {
		key := strings.Trim(fields[i], valueCutset)
		if key == "" {
			return 0, nil, nil, fmt.Errorf("%w: empty keyword at field %d", ErrMalformedTextSegment, i)
		}
		value := strings.Trim(fields[i+1], valueCutset)
		if kw.set(key, value) {
			warnings = append(warnings, Warning{
				Code:    WarnDuplicateKeyword,
				Message: fmt.Sprintf("keyword %s appears more than once; keeping %q", key, value),
			})
		}
	}
	return delim, kw, warnings, nil
}
