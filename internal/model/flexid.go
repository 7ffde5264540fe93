package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexID is an identifier the backend sends either as a JSON string or as a
// JSON number. It is always carried and rendered as text.
type FlexID string

// UnmarshalJSON accepts "abc", 42 and null.
func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch firstByte(b) {
	case 0, 'n':
		*id = ""
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id must be a string or number: %s", b)
		}
		*id = FlexID(n.String())
		return nil
	}
}

// String returns the identifier text.
func (id FlexID) String() string { return string(id) }

// Int64 parses the identifier as a decimal integer.
func (id FlexID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}
