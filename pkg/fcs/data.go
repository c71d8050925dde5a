package fcs

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// DataType is the $DATATYPE of the DATA segment.
type DataType byte

const (
	DataTypeInteger DataType = 'I'
	DataTypeFloat   DataType = 'F'
	DataTypeDouble  DataType = 'D'
	DataTypeASCII   DataType = 'A'
)

func (t DataType) String() string {
	switch t {
	case DataTypeInteger:
		return "integer"
	case DataTypeFloat:
		return "float32"
	case DataTypeDouble:
		return "float64"
	case DataTypeASCII:
		return "ascii"
	default:
		return fmt.Sprintf("datatype(%d)", byte(t))
	}
}

func parseDataType(s string) (DataType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 1 {
		switch t := DataType(s[0]); t {
		case DataTypeInteger, DataTypeFloat, DataTypeDouble:
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedDataType, s)
}

// parseByteOrder accepts the fully ascending or fully descending $BYTEORD
// sequences of 2, 4 or 8 bytes. Mixed orders such as 3,4,1,2 are rejected.
func parseByteOrder(s string) (binary.ByteOrder, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	switch s {
	case "1,2", "1,2,3,4", "1,2,3,4,5,6,7,8":
		return binary.LittleEndian, nil
	case "2,1", "4,3,2,1", "8,7,6,5,4,3,2,1":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedByteOrder, s)
	}
}

// validWidth reports whether bits is a legal $PnB for the data type.
func validWidth(dt DataType, bits int) bool {
	switch dt {
	case DataTypeInteger:
		return bits == 8 || bits == 16 || bits == 32 || bits == 64
	case DataTypeFloat:
		return bits == 32
	case DataTypeDouble:
		return bits == 64
	default:
		return false
	}
}

// recordLayout describes how one event is stored: the byte width of each
// column in order and the total stride.
type recordLayout struct {
	widths []int
	stride int
}

func newRecordLayout(dt DataType, params []Parameter) (recordLayout, error) {
	l := recordLayout{widths: make([]int, len(params))}
	for i, p := range params {
		if !validWidth(dt, p.Bits) {
			return recordLayout{}, fmt.Errorf("%w: parameter %d declares %d bits for %s data",
				ErrUnsupportedDataType, p.Index, p.Bits, dt)
		}
		l.widths[i] = p.ByteWidth()
		l.stride += l.widths[i]
	}
	return l, nil
}

func readValue(b []byte, dt DataType, order binary.ByteOrder) float64 {
	switch dt {
	case DataTypeFloat:
		return float64(math.Float32frombits(order.Uint32(b)))
	case DataTypeDouble:
		return math.Float64frombits(order.Uint64(b))
	}
	switch len(b) {
	case 1:
		return float64(b[0])
	case 2:
		return float64(order.Uint16(b))
	case 4:
		return float64(order.Uint32(b))
	default:
		return float64(order.Uint64(b))
	}
}

// decodeEvents reads up to total complete records from seg. It returns the
// event matrix; the caller compares Rows against total.
func decodeEvents(seg []byte, total int, layout recordLayout, dt DataType, order binary.ByteOrder) *Events {
	cols := len(layout.widths)
	rows := total
	if layout.stride > 0 {
		rows = min(total, len(seg)/layout.stride)
	}
	values := make([]float64, rows*cols)

	off := 0
	for i := range rows {
		row := values[i*cols : (i+1)*cols]
		for j, w := range layout.widths {
			row[j] = readValue(seg[off:off+w], dt, order)
			off += w
		}
	}
	return newEvents(rows, cols, values)
}
