package fcs

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedVersion       = errors.New("unsupported FCS version")
	ErrMalformedHeader          = errors.New("malformed FCS header")
	ErrMalformedTextSegment     = errors.New("malformed FCS TEXT segment")
	ErrMalformedDataOffsets     = errors.New("malformed FCS DATA offsets")
	ErrMissingKeyword           = errors.New("missing required FCS keyword")
	ErrMissingParameterMetadata = errors.New("missing FCS parameter metadata")
	ErrUnsupportedMode          = errors.New("unsupported FCS acquisition mode")
	ErrUnsupportedDataType      = errors.New("unsupported FCS data type")
	ErrUnsupportedByteOrder     = errors.New("unsupported FCS byte order")

	// ErrDataLengthMismatch is never returned by Parse. It is the error form of
	// the DataLengthMismatch warning, so errors.Is works on Warning values.
	ErrDataLengthMismatch = errors.New("FCS DATA segment length mismatch")

	ErrNoEvents = errors.New("FCS events were not decoded")
)

// MissingKeywordError reports a required standard keyword that is absent or
// cannot be parsed.
type MissingKeywordError struct {
	Key   string
	Value string
}

func (e *MissingKeywordError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid value %q for keyword %s", e.Value, e.Key)
	}
	return fmt.Sprintf("missing required keyword %s", e.Key)
}

func (e *MissingKeywordError) Unwrap() error {
	return ErrMissingKeyword
}

// MissingParameterError reports a parameter whose $PnB, $PnR or $PnE keyword is
// absent or unparseable.
type MissingParameterError struct {
	Index int
	Key   string
	Value string
}

func (e *MissingParameterError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("parameter %d: invalid value %q for %s", e.Index, e.Value, e.Key)
	}
	return fmt.Sprintf("parameter %d: missing %s", e.Index, e.Key)
}

func (e *MissingParameterError) Unwrap() error {
	return ErrMissingParameterMetadata
}
