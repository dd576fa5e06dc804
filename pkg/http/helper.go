package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	apperrors "staydesk/pkg/errors"
	"strconv"
	"strings"
)

// ParseOptionalID reads a positive integer query parameter. An absent or empty
// parameter yields nil.
func ParseOptionalID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, raw))
	}
	return &id, nil
}

// DecodeJSON decodes the request body into dst. An empty body leaves dst
// untouched so that required-field checks report what is missing.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.InvalidInput("request body too large")
		}
		return apperrors.InvalidInput("Invalid request body: " + err.Error())
	}
}

// ResolveID prefers the identifier from the JSON body and falls back to the
// query string.
func ResolveID(r *http.Request, fromBody *int64, name string) (*int64, error) {
	if fromBody != nil {
		return fromBody, nil
	}
	return ParseOptionalID(r, name)
}
