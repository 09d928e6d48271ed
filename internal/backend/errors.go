package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxErrorBody = 64 << 10

// Error describes a failed backend call. Detail holds the backend's structured
// `detail` field when the response carried one.
type Error struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend %s: %s", e.Op, e.message())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) message() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("request failed with status code %d", e.StatusCode)
	}
}

// Message returns the text shown to users: the backend detail if present,
// otherwise the transport error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		return be.message()
	}
	return err.Error()
}

// decodeDetail extracts the `detail` field from an error body.
func decodeDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 || string(payload.Detail) == "null" {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return strings.TrimSpace(detail)
	}
	return string(payload.Detail)
}
