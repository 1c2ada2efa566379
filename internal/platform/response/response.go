// Package response writes the JSON envelope every API response uses:
// {"statusCode": int, "message": string, "status": bool, "data": any}.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Generic messages.
const (
	MsgInternal     = "Something went wrong"
	MsgUnauthorized = "unauthorized"
	MsgForbidden    = "forbidden"
	MsgTooMany      = "Too many requests. Please try again later."
	MsgBadBody      = "Invalid request body."
)

// Envelope is the response body.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Status     bool   `json:"status"`
	Data       any    `json:"data"`
}

// JSON writes the envelope with the given HTTP status. Status is true for 2xx codes.
func JSON(w http.ResponseWriter, statusCode int, message string, data any) {
	write(w, statusCode, Envelope{
		StatusCode: statusCode,
		Message:    message,
		Status:     statusCode >= 200 && statusCode < 300,
		Data:       data,
	})
}

// Error writes a failure envelope with null data.
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, message, nil)
}

// Internal logs err and writes the generic 500 envelope. Details never reach the client.
func Internal(w http.ResponseWriter, log *zap.Logger, r *http.Request, err error) {
	if log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	Error(w, http.StatusInternalServerError, MsgInternal)
}

func write(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(env)
}

// Decode reads a JSON body of at most 1 MiB into dst. Unknown fields are ignored.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst)
}
