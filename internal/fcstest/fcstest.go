// Package fcstest builds small synthetic FCS files for tests outside pkg/fcs.
package fcstest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// TubeEvents is the number of events in Tube.
const TubeEvents = 6

// TubeNames are the $PnN short names of Tube.
var TubeNames = []string{"FSC-A", "SSC-A", "FITC-A"}

// TubeValue returns event i of parameter j (both 0-based).
func TubeValue(i, j int) float32 {
	switch j {
	case 0:
		return float32(i * 100)
	case 1:
		return float32(i*10 + 1)
	default:
		return float32(-50 + i*200)
	}
}

// Tube lays out a little-endian float FCS3.1 list-mode file acquired on a
// FACSCanto II, with TubeEvents events of the TubeNames parameters.
func Tube() []byte {
	var data []byte
	for i := range TubeEvents {
		for j := range TubeNames {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(TubeValue(i, j)))
		}
	}

	keywords := []string{
		"$BYTEORD", "1,2,3,4",
		"$DATATYPE", "F",
		"$MODE", "L",
		"$NEXTDATA", "0",
		"$TOT", strconv.Itoa(TubeEvents),
		"$CYT", "FACSCanto II",
		"TUBE NAME", "Tube_001",
		"$PAR", strconv.Itoa(len(TubeNames)),
	}
	for i, name := range TubeNames {
		n := strconv.Itoa(i + 1)
		keywords = append(keywords, "$P"+n+"N", name, "$P"+n+"B", "32", "$P"+n+"R", "262144", "$P"+n+"E", "0,0")
	}
	text := func(start, end int) []byte {
		var b bytes.Buffer
		b.WriteString("/")
		for k := 0; k < len(keywords); k += 2 {
			b.WriteString(keywords[k] + "/" + keywords[k+1] + "/")
		}
		fmt.Fprintf(&b, "$BEGINDATA/%020d/$ENDDATA/%020d/", start, end)
		return b.Bytes()
	}

	const textStart = 64
	textEnd := textStart + len(text(0, 0)) - 1
	dataStart := textEnd + 1
	dataEnd := dataStart + len(data) - 1

	var out bytes.Buffer
	out.WriteString("FCS3.1    ")
	for _, v := range []int{textStart, textEnd, dataStart, dataEnd, 0, 0} {
		fmt.Fprintf(&out, "%8d", v)
	}
	out.WriteString(strings.Repeat(" ", textStart-out.Len()))
	out.Write(text(dataStart, dataEnd))
	out.Write(data)
	return out.Bytes()
}

// WriteFile writes data to name inside a test temp dir and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
