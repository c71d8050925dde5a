package fcs

import (
	"fmt"
	"math"
	"strings"
)

// Dump renders the file metadata for humans: version, segment offsets,
// delimiter, keywords and parameter attributes. Events are not included.
func (f *File) Dump() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Version: %s\n", f.Header.Version)
	fmt.Fprintf(&b, "TEXT:     %d-%d\n", f.Header.TextStart, f.Header.TextEnd)
	fmt.Fprintf(&b, "DATA:     %d-%d\n", f.Header.DataStart, f.Header.DataEnd)
	fmt.Fprintf(&b, "ANALYSIS: %d-%d\n", f.Header.AnalysisStart, f.Header.AnalysisEnd)
	if f.Header.OtherStart != 0 {
		fmt.Fprintf(&b, "OTHER:    %d\n", f.Header.OtherStart)
	}
	fmt.Fprintf(&b, "Delimiter: %s\n", describeDelimiter(f.delimiter))

	b.WriteString("\nStandard keywords:\n")
	for _, kw := range f.Keywords.Standard() {
		fmt.Fprintf(&b, "  %s = %s\n", kw.Key, kw.Value)
	}
	if custom := f.Keywords.Custom(); len(custom) > 0 {
		b.WriteString("\nCustom keywords:\n")
		for _, kw := range custom {
			fmt.Fprintf(&b, "  %s = %s\n", kw.Key, kw.Value)
		}
	}

	b.WriteString("\nParameters:\n")
	for _, p := range f.Parameters {
		fmt.Fprintf(&b, "  P%d %s", p.Index, p.ShortName)
		if p.Label != "" {
			fmt.Fprintf(&b, " (%s)", p.Label)
		}
		fmt.Fprintf(&b, " bits=%d range=%d amp=%s gain=%g", p.Bits, p.Range, p.Amplification, p.Gain)
		if !math.IsNaN(p.Voltage) {
			fmt.Fprintf(&b, " voltage=%g", p.Voltage)
		}
		fmt.Fprintf(&b, " display=%s\n", p.Display)
	}

	if len(f.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range f.Warnings {
			fmt.Fprintf(&b, "  %s\n", w.Error())
		}
	}
	return b.String()
}

func describeDelimiter(d byte) string {
	switch d {
	case '\f':
		return `\f (0x0c)`
	case '\t':
		return `\t (0x09)`
	}
	if d < 0x20 || d >= 0x7f {
		return fmt.Sprintf("0x%02x", d)
	}
	return fmt.Sprintf("%q", d)
}
