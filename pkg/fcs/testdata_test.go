package fcs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

const textOffset = 256

// fcsBuilder lays out a synthetic FCS file: a 58-byte HEADER padded to
// textOffset, the TEXT segment and the DATA segment right after it.
type fcsBuilder struct {
	version  string
	delim    byte
	keywords [][2]string
	data     []byte

	// omitHeaderData leaves the HEADER DATA fields at zero so only
	// $BEGINDATA/$ENDDATA locate the segment.
	omitHeaderData bool
	// omitDataKeywords leaves out $BEGINDATA/$ENDDATA.
	omitDataKeywords bool
	// headerDataShift is added to the HEADER DATA offsets.
	headerDataShift int
	// swapHeader writes the DATA offsets in the TEXT fields and vice versa.
	swapHeader bool
	// truncate drops this many bytes from the end of the file.
	truncate int
}

func newBuilder() *fcsBuilder {
	return &fcsBuilder{version: Version31, delim: '/'}
}

func (b *fcsBuilder) kw(key, value string) *fcsBuilder {
	b.keywords = append(b.keywords, [2]string{key, value})
	return b
}

func (b *fcsBuilder) text(dataStart, dataEnd int) []byte {
	var buf bytes.Buffer
	d := string(b.delim)
	esc := func(s string) string {
		return string(bytes.ReplaceAll([]byte(s), []byte(d), []byte(d+d)))
	}
	buf.WriteString(d)
	for _, kv := range b.keywords {
		buf.WriteString(esc(kv[0]) + d + esc(kv[1]) + d)
	}
	if !b.omitDataKeywords {
		buf.WriteString(fmt.Sprintf("$BEGINDATA%s%020d%s$ENDDATA%s%020d%s", d, dataStart, d, d, dataEnd, d))
	}
	return buf.Bytes()
}

func (b *fcsBuilder) build() []byte {
	textLen := len(b.text(0, 0))
	textEnd := textOffset + textLen - 1
	dataStart := textEnd + 1
	dataEnd := dataStart + len(b.data) - 1
	if len(b.data) == 0 {
		dataStart, dataEnd = 0, 0
	}
	text := b.text(dataStart, dataEnd)

	hdrDataStart, hdrDataEnd := dataStart, dataEnd
	if b.omitHeaderData {
		hdrDataStart, hdrDataEnd = 0, 0
	} else if hdrDataStart != 0 {
		hdrDataStart += b.headerDataShift
		hdrDataEnd += b.headerDataShift
	}

	fields := []int{textOffset, textEnd, hdrDataStart, hdrDataEnd, 0, 0}
	if b.swapHeader {
		fields[0], fields[1], fields[2], fields[3] = fields[2], fields[3], fields[0], fields[1]
	}

	var out bytes.Buffer
	out.WriteString(b.version)
	out.WriteString("    ")
	for _, v := range fields {
		fmt.Fprintf(&out, "%8d", v)
	}
	out.Write(bytes.Repeat([]byte{' '}, textOffset-out.Len()))
	out.Write(text)
	out.Write(b.data)

	raw := out.Bytes()
	return raw[:len(raw)-b.truncate]
}

// params declares n parameters with the given widths and names.
func (b *fcsBuilder) params(names []string, bits []int) *fcsBuilder {
	b.kw("$PAR", strconv.Itoa(len(names)))
	for i, name := range names {
		n := strconv.Itoa(i + 1)
		b.kw("$P"+n+"N", name)
		b.kw("$P"+n+"B", strconv.Itoa(bits[i]))
		b.kw("$P"+n+"R", "262144")
		b.kw("$P"+n+"E", "0,0")
	}
	return b
}

func float32Data(order binary.AppendByteOrder, rows [][]float64) []byte {
	var buf []byte
	for _, row := range rows {
		for _, v := range row {
			buf = order.AppendUint32(buf, math.Float32bits(float32(v)))
		}
	}
	return buf
}

func float64Data(order binary.AppendByteOrder, rows [][]float64) []byte {
	var buf []byte
	for _, row := range rows {
		for _, v := range row {
			buf = order.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return buf
}

// intData encodes unsigned integers with per-column byte widths.
func intData(order binary.AppendByteOrder, widths []int, rows [][]uint64) []byte {
	var buf []byte
	for _, row := range rows {
		for j, v := range row {
			switch widths[j] {
			case 1:
				buf = append(buf, byte(v))
			case 2:
				buf = order.AppendUint16(buf, uint16(v))
			case 4:
				buf = order.AppendUint32(buf, uint32(v))
			case 8:
				buf = order.AppendUint64(buf, v)
			}
		}
	}
	return buf
}

var ariaNames = []string{
	"FSC-A", "FSC-H", "FSC-W", "SSC-A", "SSC-H", "SSC-W", "FITC-A",
	"PE-A", "PerCP-Cy5-5-A", "PE-Cy7-A", "APC-A", "APC-Cy7-A", "BV421-A", "Time",
}

const ariaEvents = 87

func ariaValue(i, j int) float64 {
	return float64(i*len(ariaNames)+j)*1.5 - 10
}

// ariaFile builds a FACSAriaIII style FCS3.1 file of 87 float events.
func ariaFile() *fcsBuilder {
	rows := make([][]float64, ariaEvents)
	for i := range rows {
		rows[i] = make([]float64, len(ariaNames))
		for j := range rows[i] {
			rows[i][j] = ariaValue(i, j)
		}
	}
	bits := make([]int, len(ariaNames))
	for i := range bits {
		bits[i] = 32
	}

	b := newBuilder()
	b.delim = '\f'
	b.kw("$BYTEORD", "1,2,3,4").
		kw("$DATATYPE", "F").
		kw("$MODE", "L").
		kw("$NEXTDATA", "0").
		kw("$TOT", strconv.Itoa(ariaEvents)).
		kw("$CYT", "FACSAriaIII").
		kw("$SRC", "Specimen_001").
		kw("$OP", "Administrator").
		kw("$DATE", "05-FEB-2019").
		kw("$FIL", "Specimen_001_Tube_001_001.fcs").
		kw("CREATOR", "BD FACSDiva Software Version 8.0.1").
		kw("EXPERIMENT NAME", "Experiment_001").
		kw("TUBE NAME", "Tube_001").
		params(ariaNames, bits).
		kw("P1DISPLAY", "LIN").
		kw("P7DISPLAY", "LOG").
		kw("$P7S", "CD3 FITC").
		kw("$P7V", "480")
	b.data = float32Data(binary.LittleEndian, rows)
	return b
}
