package fcs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amplification is the decoded $PnE pair: number of log decades and the
// offset (the linear value that maps to channel 0). 0,0 means linear.
type Amplification struct {
	Decades float64
	Offset  float64
}

// IsLog reports whether the channel was recorded on a log amplifier.
func (a Amplification) IsLog() bool {
	return a.Decades != 0
}

// LogZero returns the offset used for a log channel. Files commonly write
// "n,0" for log channels, which is read as an offset of 1.
func (a Amplification) LogZero() float64 {
	if !a.IsLog() {
		return 0
	}
	if a.Offset == 0 {
		return 1
	}
	return a.Offset
}

func (a Amplification) String() string {
	return strconv.FormatFloat(a.Decades, 'g', -1, 64) + "," + strconv.FormatFloat(a.Offset, 'g', -1, 64)
}

// Parameter describes one measured channel ($Pn* keywords).
type Parameter struct {
	Index         int
	ShortName     string
	Label         string
	Range         int64
	Bits          int
	Amplification Amplification
	Gain          float64
	Voltage       float64
	Display       string
}

// ByteWidth returns the storage width of one value of this parameter.
func (p Parameter) ByteWidth() int {
	return p.Bits / 8
}

func paramKey(n int, suffix string) string {
	return "$P" + strconv.Itoa(n) + suffix
}

func parseParameters(kw *Keywords) ([]Parameter, error) {
	count, err := kw.MustInt64(KeyPar)
	if err != nil {
		return nil, err
	}
	// Every parameter needs at least $PnB and $PnR.
	if count < 1 || count > int64(kw.Len()) {
		return nil, &MissingKeywordError{Key: KeyPar, Value: kw.Value(KeyPar)}
	}

	params := make([]Parameter, 0, count)
	for n := 1; n <= int(count); n++ {
		p, err := parseParameter(kw, n)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func parseParameter(kw *Keywords, n int) (Parameter, error) {
	p := Parameter{
		Index:     n,
		ShortName: "P" + strconv.Itoa(n),
		Gain:      1,
		Voltage:   math.NaN(),
		Display:   "LIN",
	}

	bKey := paramKey(n, "B")
	raw, ok := kw.Get(bKey)
	if !ok {
		return Parameter{}, &MissingParameterError{Index: n, Key: bKey}
	}
	bits, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || bits <= 0 {
		return Parameter{}, &MissingParameterError{Index: n, Key: bKey, Value: raw}
	}
	p.Bits = bits

	rKey := paramKey(n, "R")
	raw, ok = kw.Get(rKey)
	if !ok {
		return Parameter{}, &MissingParameterError{Index: n, Key: rKey}
	}
	rng, ok := parseRange(raw)
	if !ok {
		return Parameter{}, &MissingParameterError{Index: n, Key: rKey, Value: raw}
	}
	p.Range = rng

	eKey := paramKey(n, "E")
	if raw, ok := kw.Get(eKey); ok {
		amp, err := parseAmplification(raw)
		if err != nil {
			return Parameter{}, &MissingParameterError{Index: n, Key: eKey, Value: raw}
		}
		p.Amplification = amp
	}

	if v, ok := kw.Get(paramKey(n, "N")); ok && v != "" {
		p.ShortName = v
	}
	p.Label = kw.Value(paramKey(n, "S"))
	if g, ok := kw.Float64(paramKey(n, "G")); ok {
		p.Gain = g
	}
	if v, ok := kw.Float64(paramKey(n, "V")); ok {
		p.Voltage = v
	}
	if d := kw.Value("P" + strconv.Itoa(n) + "DISPLAY"); d != "" {
		p.Display = d
	}
	return p, nil
}

// parseRange accepts integer ranges and, leniently, fractional ones written by
// some acquisition software for floating point channels.
func parseRange(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, v > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return int64(math.Ceil(f)), true
}

func parseAmplification(s string) (Amplification, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Amplification{}, fmt.Errorf("expected two comma separated values, got %q", s)
	}
	decades, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Amplification{}, err
	}
	offset, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Amplification{}, err
	}
	return Amplification{Decades: decades, Offset: offset}, nil
}
