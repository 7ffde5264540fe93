// Package render turns authkit records into console text. Nothing here
// touches the network.
package render

import (
	"strconv"
	"strings"

	"github.com/authkit/authctl/internal/model"
)

// RoleNames resolves role ids for display. Implementations must never
// return an empty string.
type RoleNames interface {
	Resolve(id int64) string
}

// RuleLine renders one rule as
//
//	<id>  , <TYPE>("name1", "name2") , fixed, <service>
//
// The role list is dropped when empty, "fixed" only appears for fixed
// rules, and the service only when set. The separator before the service
// is ", " after "fixed" and " , " directly after the type; reports parsed
// by existing tooling depend on that exact spacing.
func RuleLine(rule model.Rule, names RoleNames) string {
	var b strings.Builder
	b.WriteString(rule.ID.String())
	b.WriteString("  , ")
	b.WriteString(string(rule.Type))

	if len(rule.Roles) > 0 {
		b.WriteByte('(')
		for i, id := range rule.Roles {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('"')
			b.WriteString(resolve(names, id))
			b.WriteByte('"')
		}
		b.WriteByte(')')
	}

	if rule.Fixed {
		b.WriteString(" , fixed")
	}
	if rule.ServiceName != "" {
		if rule.Fixed {
			b.WriteString(", ")
		} else {
			b.WriteString(" , ")
		}
		b.WriteString(rule.ServiceName)
	}
	return b.String()
}

func resolve(names RoleNames, id int64) string {
	if names == nil {
		return strconv.FormatInt(id, 10)
	}
	if name := names.Resolve(id); name != "" {
		return name
	}
	return strconv.FormatInt(id, 10)
}
