package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Outcome classifies a response so callers branch on meaning rather than status codes.
type Outcome int

const (
	OK Outcome = iota
	Invalid
	Unauthenticated
	Forbidden
	NotFound
	Conflict
	ServerError
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Invalid:
		return "invalid"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "server_error"
	}
}

// OutcomeFor maps an HTTP status to its Outcome.
func OutcomeFor(status int) Outcome {
	switch {
	case status >= 200 && status < 300:
		return OK
	case status == http.StatusUnauthorized:
		return Unauthenticated
	case status == http.StatusForbidden:
		return Forbidden
	case status == http.StatusNotFound:
		return NotFound
	case status == http.StatusConflict:
		return Conflict
	case status >= 400 && status < 500:
		return Invalid
	default:
		return ServerError
	}
}

// Result is one decoded API response.
type Result struct {
	StatusCode int
	Outcome    Outcome
	Message    string
	Data       json.RawMessage
}

// envelope mirrors the server's {statusCode, message, status, data} body.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Status     bool            `json:"status"`
	Data       json.RawMessage `json:"data"`
}

func newResult(status int, body []byte) *Result {
	res := &Result{StatusCode: status, Outcome: OutcomeFor(status)}
	var env envelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		res.Message = env.Message
		res.Data = env.Data
	} else if len(body) > 0 {
		res.Message = string(body)
	}
	return res
}

// Decode unmarshals Data into v. A null or absent payload leaves v untouched.
func (r *Result) Decode(v any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// Err returns nil for OK results and an *APIError otherwise.
func (r *Result) Err() error {
	if r.Outcome == OK {
		return nil
	}
	return &APIError{StatusCode: r.StatusCode, Outcome: r.Outcome, Message: r.Message}
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Outcome    Outcome
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d (%s)", e.StatusCode, e.Outcome)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Outcome, e.Message)
}

// IsOutcome reports whether err is an *APIError with outcome o.
func IsOutcome(err error, o Outcome) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Outcome == o
}
