package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gosuri/uitable"

	"github.com/authkit/authctl/internal/model"
)

// NoRecords is printed instead of an empty list.
const NoRecords = "(no records)"

// Rules writes a titled list of rule lines.
func Rules(w io.Writer, title string, rules []model.Rule, names RoleNames) {
	header(w, title, len(rules))
	if len(rules) == 0 {
		fmt.Fprintln(w, NoRecords)
		return
	}
	for _, r := range rules {
		fmt.Fprintln(w, RuleLine(r, names))
	}
}

// Users writes a titled list of user lines.
func Users(w io.Writer, title string, users []model.User) {
	header(w, title, len(users))
	if len(users) == 0 {
		fmt.Fprintln(w, NoRecords)
		return
	}
	for _, u := range users {
		fmt.Fprintln(w, UserLine(u))
	}
}

// UserPage writes one page of users with its pagination header.
func UserPage(w io.Writer, page *model.UserPage) {
	if page.PaginationEnabled {
		fmt.Fprintf(w, "== Users: page %d/%d, total %d, showing %d (page size %d) ==\n",
			page.Page, page.TotalPages, page.Total, len(page.Users), page.PageSize)
	} else {
		fmt.Fprintf(w, "== Users: %d ==\n", len(page.Users))
	}
	if len(page.Users) == 0 {
		fmt.Fprintln(w, NoRecords)
		return
	}
	for _, u := range page.Users {
		fmt.Fprintln(w, UserLine(u))
	}
}

// Roles writes a role table.
func Roles(w io.Writer, title string, roles []model.Role) {
	header(w, title, len(roles))
	if len(roles) == 0 {
		fmt.Fprintln(w, NoRecords)
		return
	}
	table := uitable.New()
	table.Separator = "  "
	table.MaxColWidth = 60
	table.AddRow("ID", "NAME", "SYSTEM")
	for _, r := range roles {
		table.AddRow(strconv.FormatInt(r.ID, 10), r.Name, yesNo(r.IsSystem))
	}
	fmt.Fprintln(w, table)
}

// UserRoles writes the (id, name) pairs of one user's roles.
func UserRoles(w io.Writer, title string, refs []model.RoleRef) {
	header(w, title, len(refs))
	if len(refs) == 0 {
		fmt.Fprintln(w, NoRecords)
		return
	}
	table := uitable.New()
	table.Separator = "  "
	table.AddRow("ID", "NAME")
	for _, r := range refs {
		id := "-"
		if v, ok := r.RoleID(); ok {
			id = strconv.FormatInt(v, 10)
		}
		name := "-"
		if v, ok := r.DisplayName(); ok {
			name = v
		}
		table.AddRow(id, name)
	}
	fmt.Fprintln(w, table)
}

// Profile writes the fields of one user as an aligned key/value block.
func Profile(w io.Writer, user model.User) {
	table := uitable.New()
	table.Separator = " "
	table.RightAlign(0)
	table.AddRow("id:", user.ID.String())
	table.AddRow("email:", user.Email)
	table.AddRow("full name:", user.FullName)
	table.AddRow("mobile:", user.Mobile)
	table.AddRow("address:", user.Address)
	table.AddRow("active:", yesNo(user.IsActive))
	table.AddRow("roles:", RoleList(user.Roles))
	fmt.Fprintln(w, table)
}

func header(w io.Writer, title string, n int) {
	if title == "" {
		return
	}
	fmt.Fprintf(w, "== %s (%d) ==\n", title, n)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
