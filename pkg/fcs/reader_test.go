package fcs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scu-obit/fcskit/internal/logger"
)

func TestParseAriaFile(t *testing.T) {
	t.Parallel()

	f, err := Parse(ariaFile().build(), true)
	require.NoError(t, err)

	assert.Equal(t, Version31, f.Header.Version)
	assert.Equal(t, byte('\f'), f.Delimiter())
	assert.Equal(t, "FACSAriaIII", f.Keywords.Value("$CYT"))
	assert.Equal(t, "F", f.Keywords.Value("$DATATYPE"))
	assert.Equal(t, "BD FACSDiva Software Version 8.0.1", f.Keywords.Value("CREATOR"))
	assert.Equal(t, DataTypeFloat, f.DataType())
	assert.Equal(t, binary.LittleEndian, f.ByteOrder())

	assert.Equal(t, ariaEvents, f.NumEvents())
	assert.Equal(t, len(ariaNames), f.NumParameters())
	assert.Equal(t, ariaNames, f.ParameterNames())
	assert.Empty(t, f.Warnings)

	require.NotNil(t, f.Events)
	assert.Equal(t, ariaEvents, f.Events.Rows())
	assert.Equal(t, len(ariaNames), f.Events.Cols())
	for _, ij := range [][2]int{{0, 0}, {0, 13}, {42, 6}, {86, 0}, {86, 13}} {
		assert.InDelta(t, ariaValue(ij[0], ij[1]), f.Events.At(ij[0], ij[1]), 1e-3, "event %v", ij)
	}

	fitc, ok := f.Parameter("fitc-a")
	require.True(t, ok)
	assert.Equal(t, 7, fitc.Index)
	assert.Equal(t, "CD3 FITC", fitc.Label)
	assert.Equal(t, "LOG", fitc.Display)
	assert.InDelta(t, 480, fitc.Voltage, 0)
	assert.Equal(t, int64(262144), fitc.Range)
	assert.Equal(t, 32, fitc.Bits)
}

func TestParseHeaderOnly(t *testing.T) {
	t.Parallel()

	f, err := Parse(ariaFile().build(), false)
	require.NoError(t, err)
	assert.Nil(t, f.Events)
	assert.Equal(t, ariaEvents, f.NumEvents())
	assert.Len(t, f.Parameters, len(ariaNames))
}

func TestParseIdempotent(t *testing.T) {
	t.Parallel()

	data := ariaFile().build()
	orig := bytes.Clone(data)

	a, err := Parse(data, true)
	require.NoError(t, err)
	b, err := Parse(data, true)
	require.NoError(t, err)

	assert.Equal(t, orig, data, "input buffer modified")
	assert.Equal(t, a.Keywords.Entries(), b.Keywords.Entries())
	assert.Equal(t, a.Header, b.Header)
	for j := range a.Events.Cols() {
		assert.Equal(t, a.Events.Column(j), b.Events.Column(j))
	}
}

func TestParseEventsDoNotAliasInput(t *testing.T) {
	t.Parallel()

	data := ariaFile().build()
	f, err := Parse(data, true)
	require.NoError(t, err)

	before := f.Events.At(0, 0)
	for i := int(f.Header.DataStart); i <= int(f.Header.DataEnd); i++ {
		data[i] = 0xff
	}
	assert.InDelta(t, before, f.Events.At(0, 0), 0)
}

func TestParseTruncatedData(t *testing.T) {
	t.Parallel()

	stride := len(ariaNames) * 4
	b := ariaFile()
	// Cut 10 full events plus part of an eleventh.
	b.truncate = 10*stride + 3
	data := b.build()

	var logs bytes.Buffer
	log := logger.New(slog.NewTextHandler(&logs, nil))

	f, err := Parse(data, true, WithLogger(log))
	require.NoError(t, err)

	require.True(t, f.HasWarning(WarnDataLengthMismatch))
	assert.Equal(t, ariaEvents-11, f.Events.Rows())
	assert.Equal(t, ariaEvents, f.NumEvents())
	assert.InDelta(t, ariaValue(75, 13), f.Events.At(75, 13), 1e-3)
	assert.Contains(t, logs.String(), string(WarnDataLengthMismatch))

	var mismatch error
	for _, w := range f.Warnings {
		if w.Code == WarnDataLengthMismatch {
			mismatch = w
		}
	}
	assert.ErrorIs(t, mismatch, ErrDataLengthMismatch)
}

func TestParseDeclaredLengthMismatch(t *testing.T) {
	t.Parallel()

	b := ariaFile()
	// Two extra bytes inside the declared DATA segment.
	b.data = append(b.data, 0, 0)
	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.True(t, f.HasWarning(WarnDataLengthMismatch))
	assert.Equal(t, ariaEvents, f.Events.Rows())
}

func TestParseMixedBitWidths(t *testing.T) {
	t.Parallel()

	widths := []int{1, 2, 4, 8}
	rows := [][]uint64{
		{1, 2, 3, 4},
		{255, 65535, 4294967295, 1 << 40},
		{0, 512, 70000, 9},
	}
	b := newBuilder().
		kw("$TOT", "3").kw("$MODE", "L").kw("$DATATYPE", "I").kw("$BYTEORD", "1,2,3,4").
		params([]string{"A", "B", "C", "D"}, []int{8, 16, 32, 64})
	b.data = intData(binary.LittleEndian, widths, rows)

	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	require.Empty(t, f.Warnings)
	require.Equal(t, 3, f.Events.Rows())
	for i, row := range rows {
		for j, v := range row {
			assert.InDelta(t, float64(v), f.Events.At(i, j), 0, "event %d param %d", i, j)
		}
	}
}

func TestParseBigEndianIntegers(t *testing.T) {
	t.Parallel()

	b := newBuilder().
		kw("$TOT", "2").kw("$MODE", "L").kw("$DATATYPE", "I").kw("$BYTEORD", "4,3,2,1").
		params([]string{"FSC", "SSC"}, []int{16, 32})
	b.data = []byte{
		0x01, 0x02, 0x00, 0x00, 0x01, 0x00,
		0xff, 0xfe, 0x12, 0x34, 0x56, 0x78,
	}

	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, f.ByteOrder())
	assert.Equal(t, []float64{0x0102, 0xfffe}, f.Events.Column(0))
	assert.Equal(t, []float64{0x100, 0x12345678}, f.Events.Column(1))
}

func TestParseDoubles(t *testing.T) {
	t.Parallel()

	rows := [][]float64{{-1.25, 1e9}, {3.5, -7}}
	b := newBuilder().
		kw("$TOT", "2").kw("$MODE", "L").kw("$DATATYPE", "D").kw("$BYTEORD", "8,7,6,5,4,3,2,1").
		params([]string{"X", "Y"}, []int{64, 64})
	b.data = float64Data(binary.BigEndian, rows)

	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.Equal(t, rows[0], f.Events.Row(0))
	assert.Equal(t, rows[1], f.Events.Row(1))
}

func TestParseEscapedDelimiter(t *testing.T) {
	t.Parallel()

	b := ariaFile()
	b.delim = '/'
	b.kw("$COM", "a/b//c").kw("PATH/NAME", "x")
	f, err := Parse(b.build(), true)
	require.NoError(t, err)

	assert.Equal(t, "a/b//c", f.Keywords.Value("$COM"))
	assert.Equal(t, "x", f.Keywords.Value("PATH/NAME"))
	assert.Equal(t, ariaEvents, f.Events.Rows())
}

func TestParseOffsetOverride(t *testing.T) {
	t.Parallel()

	b := ariaFile()
	b.omitHeaderData = true
	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.Empty(t, f.Warnings)
	assert.NotZero(t, f.Header.DataStart)
	assert.Equal(t, ariaEvents, f.Events.Rows())
	assert.InDelta(t, ariaValue(3, 2), f.Events.At(3, 2), 1e-3)
}

func TestParseOffsetMismatchPrefersKeywords(t *testing.T) {
	t.Parallel()

	b := ariaFile()
	b.headerDataShift = 4
	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.True(t, f.HasWarning(WarnOffsetMismatch))
	assert.False(t, f.HasWarning(WarnDataLengthMismatch))
	assert.InDelta(t, ariaValue(0, 0), f.Events.At(0, 0), 1e-3)
}

func TestParseHeaderOffsetsOnly(t *testing.T) {
	t.Parallel()

	b := ariaFile()
	b.omitDataKeywords = true
	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.Equal(t, ariaEvents, f.Events.Rows())
}

func TestParseSwappedSegments(t *testing.T) {
	t.Parallel()

	b := ariaFile()
	b.swapHeader = true
	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.True(t, f.HasWarning(WarnSwappedSegments))
	assert.Equal(t, int64(textOffset), f.Header.TextStart)
	assert.Equal(t, ariaEvents, f.Events.Rows())
}

func TestParseDuplicateKeyword(t *testing.T) {
	t.Parallel()

	b := ariaFile().kw("$cyt", "LSRFortessa")
	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.True(t, f.HasWarning(WarnDuplicateKeyword))
	assert.Equal(t, "LSRFortessa", f.Keywords.Value("$CYT"))
	assert.Equal(t, "$CYT", f.Keywords.Keys()[5])
}

func TestParseZeroEvents(t *testing.T) {
	t.Parallel()

	b := newBuilder().
		kw("$TOT", "0").kw("$MODE", "L").kw("$DATATYPE", "F").kw("$BYTEORD", "1,2,3,4").
		params([]string{"FSC"}, []int{32})
	f, err := Parse(b.build(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Events.Rows())
	assert.Empty(t, f.Events.Column(0))
	assert.Nil(t, f.Events.Matrix())
}

func TestParseFCS20(t *testing.T) {
	t.Parallel()

	b := ariaFile()
	b.version = Version20
	f, err := Parse(b.build(), false)
	require.NoError(t, err)
	assert.Equal(t, Version20, f.Header.Version)

	_, err = Parse(b.build(), true)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	withKeyword := func(key, value string) []byte {
		b := ariaFile()
		for i, kv := range b.keywords {
			if strings.EqualFold(kv[0], key) {
				b.keywords[i][1] = value
			}
		}
		return b.build()
	}
	without := func(key string) []byte {
		b := ariaFile()
		kept := b.keywords[:0]
		for _, kv := range b.keywords {
			if !strings.EqualFold(kv[0], key) {
				kept = append(kept, kv)
			}
		}
		b.keywords = kept
		return b.build()
	}
	corrupt := func(off int, s string) []byte {
		data := ariaFile().build()
		copy(data[off:], s)
		return data
	}
	short := ariaFile().build()[:40]
	bb := ariaFile().kw("$BEGINDATA", "x")
	bb.omitDataKeywords = true
	badBegin := bb.build()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrUnsupportedVersion},
		{"bad signature", corrupt(0, "FCS4.0"), ErrUnsupportedVersion},
		{"short header", short, ErrMalformedHeader},
		{"non numeric text offset", corrupt(offTextStart, "    abcd"), ErrMalformedHeader},
		{"zero text offset", corrupt(offTextStart, "       0"), ErrMalformedHeader},
		{"text past end", corrupt(offTextEnd, "99999999"), ErrMalformedHeader},
		{"missing par", without("$PAR"), ErrMissingKeyword},
		{"oversized par", withKeyword("$PAR", "9000000000000000000"), ErrMissingKeyword},
		{"par beyond keywords", withKeyword("$PAR", "100000"), ErrMissingKeyword},
		{"missing bits", without("$P3B"), ErrMissingParameterMetadata},
		{"missing range", without("$P14R"), ErrMissingParameterMetadata},
		{"bad amplification", withKeyword("$P2E", "log"), ErrMissingParameterMetadata},
		{"missing tot", without("$TOT"), ErrMissingKeyword},
		{"missing mode", without("$MODE"), ErrMissingKeyword},
		{"missing datatype", without("$DATATYPE"), ErrMissingKeyword},
		{"missing byteord", without("$BYTEORD"), ErrMissingKeyword},
		{"histogram mode", withKeyword("$MODE", "C"), ErrUnsupportedMode},
		{"ascii data", withKeyword("$DATATYPE", "A"), ErrUnsupportedDataType},
		{"float width", withKeyword("$P4B", "16"), ErrUnsupportedDataType},
		{"mixed byte order", withKeyword("$BYTEORD", "3,4,1,2"), ErrUnsupportedByteOrder},
		{"bad begindata", badBegin, ErrMalformedDataOffsets},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.data, true)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseMalformedText(t *testing.T) {
	t.Parallel()

	data := ariaFile().build()
	// Turn the delimiter after the first key into a regular byte.
	i := bytes.IndexByte(data[textOffset+1:], '\f')
	data[textOffset+1+i] = 'X'

	_, err := Parse(data, false)
	assert.ErrorIs(t, err, ErrMalformedTextSegment)
}

func TestParseMalformedDataOffsets(t *testing.T) {
	t.Parallel()

	b := ariaFile()
	b.omitDataKeywords = true
	data := b.build()
	copy(data[offDataStart:], "99999990")
	copy(data[offDataEnd:], "99999999")

	_, err := Parse(data, true)
	assert.ErrorIs(t, err, ErrMalformedDataOffsets)

	// Without DATA the offsets are never checked.
	_, err = Parse(data, false)
	assert.NoError(t, err)
}

func TestParseMissingKeywordDetails(t *testing.T) {
	t.Parallel()

	b := newBuilder().kw("$PAR", "1").kw("$P1R", "1024")
	_, err := Parse(b.build(), false)

	var perr *MissingParameterError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Index)
	assert.Equal(t, "$P1B", perr.Key)
}
