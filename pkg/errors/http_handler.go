package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError writes err as an ErrorResponse. Non-AppErrors become INTERNAL_ERROR
// without leaking their text.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())

	response := ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}

	// no recovery possible after WriteHeader; the caller logs
	return json.NewEncoder(w).Encode(response)
}
