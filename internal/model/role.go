package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Role is an authkit role as returned by GET /api/roles.
type Role struct {
	ID       int64  `json:"id,omitempty" validate:"gte=0"`
	Name     string `json:"name" validate:"required"`
	IsSystem bool   `json:"is_system"`
}

// RoleRefKind tags which parts of a role reference are known.
type RoleRefKind int

const (
	RoleRefUnknown RoleRefKind = iota
	RoleRefByID
	RoleRefByName
	RoleRefNamed
)

// RoleRef is a role as it appears inside user and profile payloads. The
// backend is inconsistent here: a role can be a bare name, a bare id, or an
// object with some of id/role_id and name/role_name/roleName.
type RoleRef struct {
	Kind RoleRefKind
	ID   int64
	Name string
}

// ByID references a role by id only.
func ByID(id int64) RoleRef { return RoleRef{Kind: RoleRefByID, ID: id} }

// ByName references a role by name only.
func ByName(name string) RoleRef { return RoleRef{Kind: RoleRefByName, Name: name} }

// Named references a role with both id and name known.
func Named(id int64, name string) RoleRef {
	return RoleRef{Kind: RoleRefNamed, ID: id, Name: name}
}

// DisplayName returns the role name when one is known.
func (r RoleRef) DisplayName() (string, bool) {
	switch r.Kind {
	case RoleRefByName, RoleRefNamed:
		return r.Name, r.Name != ""
	default:
		return "", false
	}
}

// RoleID returns the role id when one is known.
func (r RoleRef) RoleID() (int64, bool) {
	switch r.Kind {
	case RoleRefByID, RoleRefNamed:
		return r.ID, true
	default:
		return 0, false
	}
}

// String renders the name, falling back to the id.
func (r RoleRef) String() string {
	if name, ok := r.DisplayName(); ok {
		return name
	}
	if id, ok := r.RoleID(); ok {
		return strconv.FormatInt(id, 10)
	}
	return ""
}

var (
	roleNameKeys = []string{"name", "role_name", "roleName"}
	roleIDKeys   = []string{"id", "role_id", "roleId"}
)

// UnmarshalJSON normalizes every role shape the backend emits.
func (r *RoleRef) UnmarshalJSON(b []byte) error {
	*r = RoleRef{}
	b = bytes.TrimSpace(b)
	switch firstByte(b) {
	case 0, 'n':
		return nil
	case '"':
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*r = ByName(name)
		return nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		name := firstString(obj, roleNameKeys)
		id, hasID := firstInt(obj, roleIDKeys)
		switch {
		case name != "" && hasID:
			*r = Named(id, name)
		case name != "":
			*r = ByName(name)
		case hasID:
			*r = ByID(id)
		}
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return nil
		}
		if id, err := n.Int64(); err == nil {
			*r = ByID(id)
		}
		return nil
	}
}

// MarshalJSON writes the reference as {"id":..,"name":..} with unknown
// parts omitted.
func (r RoleRef) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if id, ok := r.RoleID(); ok {
		out["id"] = id
	}
	if name, ok := r.DisplayName(); ok {
		out["name"] = name
	}
	return json.Marshal(out)
}

func firstString(obj map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func firstInt(obj map[string]json.RawMessage, keys []string) (int64, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var id FlexID
		if err := json.Unmarshal(v, &id); err != nil {
			continue
		}
		if n, ok := id.Int64(); ok {
			return n, true
		}
	}
	return 0, false
}

// RoleNames returns the names of refs that carry one, in order.
func RoleNames(refs []RoleRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		if name, ok := r.DisplayName(); ok {
			names = append(names, name)
		}
	}
	return names
}
