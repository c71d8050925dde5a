package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/scu-obit/fcskit/internal/source"
	"github.com/scu-obit/fcskit/pkg/fcs"
	"github.com/scu-obit/fcskit/pkg/hyperlog"
)

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrFileNotFound      = errors.New("file not found")
	ErrParameterNotFound = errors.New("parameter not found")
)

type invalidRequestError struct {
	msg   string
	param string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(param, msg string) error {
	return invalidRequestError{msg: msg, param: param}
}

// writeErr maps an error from the fcs, hyperlog or source packages onto an
// HTTP status and error body.
func writeErr(c *echo.Context, err error) error {
	var (
		invalid  invalidRequestError
		paramErr *hyperlog.ParamError
	)
	switch {
	case errors.As(err, &invalid):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", invalid.msg, invalid.param, "")
	case errors.As(err, &paramErr):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", paramErr.Error(), paramErr.Field, "invalid_parameters")
	case errors.Is(err, ErrFileNotFound), errors.Is(err, ErrParameterNotFound):
		return writeNotFound(c, err.Error())
	case errors.Is(err, source.ErrTooLarge):
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", err.Error(), "", "too_large")
	case errors.Is(err, fcs.ErrNoEvents):
		return writeError(c, http.StatusConflict, "invalid_request_error", "file was uploaded without its DATA segment", "", "no_events")
	case isFCSError(err):
		return writeError(c, http.StatusUnprocessableEntity, "fcs_error", err.Error(), "", fcsCode(err))
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
}

var fcsErrors = []struct {
	err  error
	code string
}{
	{fcs.ErrUnsupportedVersion, "unsupported_version"},
	{fcs.ErrMalformedHeader, "malformed_header"},
	{fcs.ErrMalformedTextSegment, "malformed_text"},
	{fcs.ErrMalformedDataOffsets, "malformed_data_offsets"},
	{fcs.ErrMissingKeyword, "missing_keyword"},
	{fcs.ErrMissingParameterMetadata, "missing_parameter"},
	{fcs.ErrUnsupportedMode, "unsupported_mode"},
	{fcs.ErrUnsupportedDataType, "unsupported_datatype"},
	{fcs.ErrUnsupportedByteOrder, "unsupported_byteorder"},
	{source.ErrInvalid, "invalid_input"},
}

func isFCSError(err error) bool {
	return fcsCode(err) != ""
}

func fcsCode(err error) string {
	for _, e := range fcsErrors {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ""
}
