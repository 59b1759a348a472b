// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the request/response JSON helpers shared by the
// feature handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ourthirdplace/thirdplace/internal/app/system/limits"
	"go.uber.org/zap"
)

// ErrBodyTooLarge is returned by Decode when the request body exceeds the
// limit.
var ErrBodyTooLarge = errors.New("request body too large")

// Write writes a JSON response.
func Write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Log error but can't do much at this point
			zap.L().Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// FieldError writes a JSON error response naming the offending field.
func FieldError(w http.ResponseWriter, status int, field, message string) {
	Write(w, status, map[string]string{
		"error":   http.StatusText(status),
		"field":   field,
		"message": message,
	})
}

// Decode reads the request body into dst. Unknown fields are rejected so a
// misspelled key fails loudly instead of silently zeroing a field.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limits.MaxJSONBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return err
	}
	return nil
}
