// Package fcs reads Flow Cytometry Standard (FCS 3.0/3.1) list-mode files.
//
// A file is three segments located by a fixed-layout ASCII HEADER: a delimited
// TEXT segment of keyword/value pairs and a binary DATA segment holding one
// record per event. Parse decodes all of it from an in-memory byte slice and
// returns an immutable File. The package performs no file system I/O and holds
// no global state, so Parse may run concurrently on independent buffers.
package fcs

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Standard keywords the reader depends on.
const (
	KeyPar           = "$PAR"
	KeyTot           = "$TOT"
	KeyDataType      = "$DATATYPE"
	KeyByteOrd       = "$BYTEORD"
	KeyMode          = "$MODE"
	KeyBeginData     = "$BEGINDATA"
	KeyEndData       = "$ENDDATA"
	KeyBeginAnalysis = "$BEGINANALYSIS"
	KeyEndAnalysis   = "$ENDANALYSIS"
	KeyCyt           = "$CYT"
	KeySrc           = "$SRC"
	KeyOp            = "$OP"
	KeyDate          = "$DATE"
	KeyFil           = "$FIL"
)

// WarningCode classifies a recoverable condition found while parsing.
type WarningCode string

const (
	WarnDuplicateKeyword   WarningCode = "duplicate_keyword"
	WarnDataLengthMismatch WarningCode = "data_length_mismatch"
	WarnOffsetMismatch     WarningCode = "offset_mismatch"
	WarnSwappedSegments    WarningCode = "swapped_segments"
)

// Warning is a soft validation failure attached to a parsed File.
// It implements error so callers can log or wrap it directly.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

func (w Warning) Unwrap() error {
	if w.Code == WarnDataLengthMismatch {
		return ErrDataLengthMismatch
	}
	return nil
}

// File is the result of one Parse call. Nothing in it aliases the input buffer.
type File struct {
	Header     Header
	Keywords   *Keywords
	Parameters []Parameter

	// Events is nil when Parse was called with readData == false.
	Events *Events

	Warnings []Warning

	delimiter byte
}

// NumEvents returns the declared event count ($TOT), or 0 if absent.
// Events.Rows may be smaller when the DATA segment was truncated.
func (f *File) NumEvents() int {
	v, _ := f.Keywords.Int(KeyTot)
	return v
}

// NumParameters returns the declared parameter count ($PAR).
func (f *File) NumParameters() int {
	return len(f.Parameters)
}

// ParameterNames returns the $PnN short names in file order.
func (f *File) ParameterNames() []string {
	names := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		names[i] = p.ShortName
	}
	return names
}

// Parameter looks up a parameter by short name, case-insensitively.
func (f *File) Parameter(name string) (Parameter, bool) {
	for _, p := range f.Parameters {
		if strings.EqualFold(p.ShortName, name) {
			return p, true
		}
	}
	return Parameter{}, false
}

// Delimiter returns the TEXT segment delimiter byte.
func (f *File) Delimiter() byte {
	return f.delimiter
}

// DataType returns the declared $DATATYPE, or 0 if absent or unknown.
func (f *File) DataType() DataType {
	dt, err := parseDataType(f.Keywords.Value(KeyDataType))
	if err != nil {
		return 0
	}
	return dt
}

// ByteOrder returns the byte order declared by $BYTEORD, or nil if it is
// absent or not one of the supported sequences.
func (f *File) ByteOrder() binary.ByteOrder {
	order, err := parseByteOrder(f.Keywords.Value(KeyByteOrd))
	if err != nil {
		return nil
	}
	return order
}

// HasWarning reports whether a warning with the given code was recorded.
func (f *File) HasWarning(code WarningCode) bool {
	for _, w := range f.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
