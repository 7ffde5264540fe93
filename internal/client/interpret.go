package client

import (
	"bytes"
	"encoding/json"

	"github.com/authkit/authctl/internal/model"
)

const unknownErrorMessage = "unknown error"

// defaultErrorType tags failures whose envelope carries no type.
const defaultErrorType = "UNKNOWN"

// Result is a successful interpretation. Payload is the "data" member when
// present, otherwise the whole body.
type Result struct {
	Status   int
	Payload  json.RawMessage
	Envelope model.Envelope
}

// Decode unmarshals the payload into v.
func (r Result) Decode(v any) error {
	if len(r.Payload) == 0 || bytes.Equal(bytes.TrimSpace(r.Payload), []byte("null")) {
		return nil
	}
	return json.Unmarshal(r.Payload, v)
}

// Interpret classifies a response body and status. want is the success
// status the operation expects; zero accepts any status below 400.
//
// A body that is not JSON yields a *TransportError. A failing status, a
// status other than want, or a non-empty "error" member yields an
// *ApplicationError. Anything else is a success.
func Interpret(body []byte, status int, want int) (Result, error) {
	var env model.Envelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		if !json.Valid(trimmed) {
			return Result{}, &TransportError{Status: status, Body: string(body)}
		}
		if trimmed[0] == '{' {
			if err := json.Unmarshal(trimmed, &env); err != nil {
				return Result{}, &TransportError{Status: status, Body: string(body), Err: err}
			}
		}
	}

	failed := status >= 400 || (want != 0 && status != want) || !env.Error.Empty()
	if failed {
		return Result{}, applicationError(env, status)
	}

	res := Result{Status: status, Envelope: env}
	if env.HasData {
		res.Payload = env.Data
	} else if len(trimmed) > 0 {
		res.Payload = json.RawMessage(trimmed)
	}
	return res, nil
}

func applicationError(env model.Envelope, status int) *ApplicationError {
	e := &ApplicationError{
		Status:  status,
		Type:    env.Type,
		Message: failureMessage(env),
	}
	if e.Type == "" {
		e.Type = defaultErrorType
	}
	switch {
	case env.DataIsObject():
		e.Detail = &ValidationDetail{Raw: env.Data}
	case len(env.Error.Data()) > 0 && bytes.HasPrefix(bytes.TrimSpace(env.Error.Data()), []byte("{")):
		e.Detail = &ValidationDetail{Raw: env.Error.Data()}
	}
	return e
}

// failureMessage picks the display text for a failed envelope. A non-empty
// top-level message wins over whatever the error member says.
func failureMessage(env model.Envelope) string {
	msg := env.Error.Text()
	if env.HasMessage && env.Message != "" {
		msg = env.Message
	}
	if msg == "" {
		msg = unknownErrorMessage
	}
	return msg
}
