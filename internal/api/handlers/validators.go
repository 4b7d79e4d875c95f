package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/domain/ids"
)

// FieldError represents a validation error for a specific request field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// writeFieldError writes a 400 with the per-field breakdown in the
// problem body's errors map.
func writeFieldError(w http.ResponseWriter, r *http.Request, env string, fieldErr FieldError) {
	problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", fieldErr, env,
		problem.WithErrors(map[string]interface{}{fieldErr.Field: fieldErr.Message}))
}

// ValidateAndExtractULID extracts and validates a ULID from a request
// path parameter. If invalid, it writes the error response and returns
// false.
func ValidateAndExtractULID(w http.ResponseWriter, r *http.Request, paramName, env string) (string, bool) {
	ulidValue := strings.TrimSpace(pathParam(r, paramName))
	if ulidValue == "" {
		writeFieldError(w, r, env, FieldError{Field: paramName, Message: "missing"})
		return "", false
	}
	if err := ids.ValidateULID(ulidValue); err != nil {
		writeFieldError(w, r, env, FieldError{Field: paramName, Message: "invalid ULID"})
		return "", false
	}
	return ulidValue, true
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
