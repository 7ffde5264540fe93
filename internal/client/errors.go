package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrNotLoggedIn is returned by calls that need a bearer token when none is set.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrNoRefreshToken is returned by Refresh when no refresh cookie is held.
var ErrNoRefreshToken = errors.New("no refresh token")

// TransportError means the call never produced a usable envelope: the
// connection failed, the request timed out, or the body was not JSON.
type TransportError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	var b bytes.Buffer
	b.WriteString("transport error")
	if e.Op != "" {
		fmt.Fprintf(&b, " in %s", e.Op)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", truncate(e.Body, 200))
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationDetail is the structured object the backend nests under "data"
// on a failed call, typically a field-to-problem map.
type ValidationDetail struct {
	Raw json.RawMessage
}

// Fields decodes the detail into a generic map.
func (d *ValidationDetail) Fields() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(d.Raw, &m)
	return m
}

// Compact returns the detail as single-line JSON.
func (d *ValidationDetail) Compact() string {
	var b bytes.Buffer
	if err := json.Compact(&b, d.Raw); err != nil {
		return string(d.Raw)
	}
	return b.String()
}

// Pretty returns the detail as indented JSON.
func (d *ValidationDetail) Pretty() string {
	var b bytes.Buffer
	if err := json.Indent(&b, d.Raw, "", "  "); err != nil {
		return string(d.Raw)
	}
	return b.String()
}

// ApplicationError is a well-formed error envelope or a failing status code.
type ApplicationError struct {
	Op      string
	Status  int
	Type    string
	Message string
	Detail  *ValidationDetail
}

func (e *ApplicationError) Error() string {
	msg := e.Message
	if e.Detail != nil {
		msg += " | details: " + e.Detail.Compact()
	}
	return msg
}

// InputError is a local pre-flight validation failure; no request was sent.
type InputError struct {
	Op     string
	Fields map[string]string
}

func (e *InputError) Error() string {
	msg := "invalid input"
	if e.Op != "" {
		msg += " for " + e.Op
	}
	for _, k := range sortedKeys(e.Fields) {
		msg += fmt.Sprintf("; %s: %s", k, e.Fields[k])
	}
	return msg
}

// IsStatus reports whether err is an ApplicationError with the given status.
func IsStatus(err error, status int) bool {
	var appErr *ApplicationError
	return errors.As(err, &appErr) && appErr.Status == status
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
