package model

import (
	"bytes"
	"encoding/json"
)

// Envelope is the top-level JSON object returned by every authkit endpoint.
// Presence of data and message is tracked separately from their values
// because the backend distinguishes "absent" from "null" in a few places.
type Envelope struct {
	Data       json.RawMessage `json:"data,omitempty"`
	Error      ErrorShape      `json:"error"`
	Message    string          `json:"message,omitempty"`
	Type       string          `json:"type,omitempty"`
	HasData    bool            `json:"-"`
	HasMessage bool            `json:"-"`
}

// UnmarshalJSON decodes the envelope and records which optional keys were
// present in the body.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Envelope{}
	if v, ok := raw["data"]; ok {
		e.Data = v
		e.HasData = true
	}
	if v, ok := raw["error"]; ok {
		if err := json.Unmarshal(v, &e.Error); err != nil {
			e.Error = StringError(string(v))
		}
	}
	if v, ok := raw["message"]; ok {
		e.HasMessage = true
		// message is usually a string; anything else is kept as its JSON text.
		if err := json.Unmarshal(v, &e.Message); err != nil {
			e.Message = string(v)
		}
	}
	if v, ok := raw["type"]; ok {
		_ = json.Unmarshal(v, &e.Type)
	}
	return nil
}

// DataIsObject reports whether the data member holds a JSON object.
func (e *Envelope) DataIsObject() bool {
	return e.HasData && firstByte(e.Data) == '{'
}

// ErrorKind tags the shape the "error" member arrived in.
type ErrorKind int

const (
	ErrorAbsent ErrorKind = iota
	ErrorString
	ErrorObject
)

// ErrorShape is the "error" member of an envelope. The backend sends either a
// plain string or an object with a message (and occasionally data); the
// shape is resolved once here so callers only use Text and Empty.
type ErrorShape struct {
	Kind    ErrorKind
	text    string
	message string
	data    json.RawMessage
	raw     json.RawMessage
}

// StringError builds a string-shaped error member.
func StringError(text string) ErrorShape {
	return ErrorShape{Kind: ErrorString, text: text}
}

// ObjectError builds an object-shaped error member.
func ObjectError(message string, data json.RawMessage) ErrorShape {
	return ErrorShape{Kind: ErrorObject, message: message, data: data}
}

// UnmarshalJSON resolves the string-or-object union.
func (s *ErrorShape) UnmarshalJSON(b []byte) error {
	*s = ErrorShape{}
	b = bytes.TrimSpace(b)
	switch firstByte(b) {
	case 0, 'n':
		return nil
	case '"':
		s.Kind = ErrorString
		return json.Unmarshal(b, &s.text)
	case '{':
		var obj struct {
			Message json.RawMessage `json:"message"`
			Data    json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		s.Kind = ErrorObject
		s.raw = append(json.RawMessage(nil), b...)
		s.data = obj.Data
		if msg := bytes.TrimSpace(obj.Message); len(msg) > 0 && !bytes.Equal(msg, []byte("null")) {
			// Non-string messages are kept as their JSON text.
			if err := json.Unmarshal(msg, &s.message); err != nil {
				s.message = string(msg)
			}
		} else if !isEmptyObject(b) {
			// Objects without a message are shown verbatim.
			s.message = string(b)
		}
		return nil
	default:
		// Numbers, booleans and arrays are treated as text.
		s.Kind = ErrorString
		s.text = string(b)
		return nil
	}
}

// MarshalJSON writes the error member back in its original shape.
func (s ErrorShape) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ErrorString:
		return json.Marshal(s.text)
	case ErrorObject:
		if len(s.raw) > 0 {
			return s.raw, nil
		}
		obj := map[string]any{"message": s.message}
		if len(s.data) > 0 {
			obj["data"] = s.data
		}
		return json.Marshal(obj)
	default:
		return []byte("null"), nil
	}
}

// Empty reports whether the error member is absent, null, "" or {}.
func (s ErrorShape) Empty() bool {
	switch s.Kind {
	case ErrorString:
		return s.text == ""
	case ErrorObject:
		return s.message == "" && len(s.data) == 0 && (len(s.raw) == 0 || isEmptyObject(s.raw))
	default:
		return true
	}
}

// Text returns the human-readable message carried by the error member.
func (s ErrorShape) Text() string {
	switch s.Kind {
	case ErrorString:
		return s.text
	case ErrorObject:
		return s.message
	default:
		return ""
	}
}

// Data returns the nested data of an object-shaped error, if any.
func (s ErrorShape) Data() json.RawMessage {
	return s.data
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func isEmptyObject(b []byte) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return false
	}
	return len(m) == 0
}
