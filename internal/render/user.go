package render

import (
	"strings"

	"github.com/authkit/authctl/internal/model"
)

// NoRoles is shown for users without a single named role.
const NoRoles = "(none)"

// UserLine renders one user as "<id>  <email>  <full_name>  roles: a, b".
func UserLine(user model.User) string {
	return strings.Join([]string{
		user.ID.String(),
		user.Email,
		user.FullName,
		"roles: " + RoleList(user.Roles),
	}, "  ")
}

// RoleList joins the names of refs, or returns NoRoles.
func RoleList(refs []model.RoleRef) string {
	names := model.RoleNames(refs)
	if len(names) == 0 {
		return NoRoles
	}
	return strings.Join(names, ", ")
}
