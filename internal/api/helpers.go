package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/scu-obit/fcskit/pkg/fcs"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return writeJSON(c, status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// writeJSON encodes v with go-json straight into the response. Column
// payloads can hold millions of values.
func writeJSON(c *echo.Context, status int, v any) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res.WriteHeader(status)
	return json.NewEncoder(res).Encode(v)
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// resolveParameter finds a parameter by 1-based index or by short name.
func resolveParameter(f *fcs.File, ref string) (fcs.Parameter, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(f.Parameters) {
			return fcs.Parameter{}, false
		}
		return f.Parameters[n-1], true
	}
	return f.Parameter(strings.TrimSpace(ref))
}

func queryBool(c *echo.Context, name string, def bool) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, newInvalidRequest(name, name+" must be a boolean")
	}
	return v, nil
}

func queryInt(c *echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def, newInvalidRequest(name, name+" must be a non-negative integer")
	}
	return v, nil
}
