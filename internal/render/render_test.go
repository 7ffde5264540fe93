package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authkit/authctl/internal/client"
	"github.com/authkit/authctl/internal/model"
)

func TestRuleLine(t *testing.T) {
	names := client.RoleNameMap{1: "author", 2: "reader"}
	tests := []struct {
		name string
		rule model.Rule
		want string
	}{
		{
			"fixed with roles",
			model.Rule{ID: "GET|/api/bar", Type: model.AccessAllow, Fixed: true, Roles: []int64{1, 2}},
			`GET|/api/bar  , ALLOW("author", "reader") , fixed`,
		},
		{
			"no roles",
			model.Rule{ID: "GET|/api/public", Type: model.AccessPublic},
			`GET|/api/public  , PUBLIC`,
		},
		{
			"unresolved id",
			model.Rule{ID: "7", Type: model.AccessForbid, Roles: []int64{2, 99}},
			`7  , FORBID("reader", "99")`,
		},
		{
			"service after fixed",
			model.Rule{ID: "x", Type: model.AccessAllow, Fixed: true, ServiceName: "auth", Roles: []int64{1}},
			`x  , ALLOW("author") , fixed, auth`,
		},
		{
			"service after type",
			model.Rule{ID: "x", Type: model.AccessAllow, ServiceName: "auth"},
			`x  , ALLOW , auth`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RuleLine(tt.rule, names); got != tt.want {
				t.Errorf("RuleLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuleLineOmissions(t *testing.T) {
	rules := []model.Rule{
		{ID: "a", Type: model.AccessAllow},
		{ID: "b", Type: model.AccessForbid, Roles: []int64{}},
		{ID: "c", Type: model.AccessPublic, Roles: []int64{3}},
	}
	for _, r := range rules {
		line := RuleLine(r, client.RoleNameMap{})
		assert.NotContains(t, line, "fixed")
		assert.NotContains(t, line, "()")
		assert.False(t, strings.HasSuffix(line, ","), "trailing separator in %q", line)
		assert.False(t, strings.HasSuffix(line, " "), "trailing space in %q", line)
	}
}

func TestRuleLineNilNames(t *testing.T) {
	got := RuleLine(model.Rule{ID: "r", Type: model.AccessAllow, Roles: []int64{4}}, nil)
	assert.Equal(t, `r  , ALLOW("4")`, got)
}

func TestUserLine(t *testing.T) {
	u := model.User{
		ID:       "u-1",
		Email:    "a@example.com",
		FullName: "Alice",
		Roles:    []model.RoleRef{model.ByName("admin"), model.ByID(3), model.Named(4, "editor")},
	}
	assert.Equal(t, "u-1  a@example.com  Alice  roles: admin, editor", UserLine(u))

	u.Roles = []model.RoleRef{model.ByID(3)}
	assert.Equal(t, "u-1  a@example.com  Alice  roles: (none)", UserLine(u))

	u.Roles = nil
	assert.True(t, strings.HasSuffix(UserLine(u), "roles: "+NoRoles))
}

func TestUserLineFromWire(t *testing.T) {
	var u model.User
	body := `{"id":12,"email":"b@example.com","full_name":"Bob","roles":["viewer",{"roleName":"author"},{"role_id":9}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &u))
	assert.Equal(t, "12  b@example.com  Bob  roles: viewer, author", UserLine(u))
}

func TestEmptyListsPrintNotice(t *testing.T) {
	var buf bytes.Buffer
	Rules(&buf, "Rules", nil, nil)
	Users(&buf, "Users", nil)
	Roles(&buf, "Roles", nil)
	UserRoles(&buf, "User roles", nil)
	UserPage(&buf, &model.UserPage{})
	assert.Equal(t, 5, strings.Count(buf.String(), NoRecords))
}

func TestRulesList(t *testing.T) {
	var buf bytes.Buffer
	Rules(&buf, "Rules", []model.Rule{
		{ID: "GET|/a", Type: model.AccessAllow, Roles: []int64{1}},
		{ID: "GET|/b", Type: model.AccessPublic},
	}, client.RoleNameMap{1: "admin"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "== Rules (2) ==", lines[0])
	assert.Equal(t, `GET|/a  , ALLOW("admin")`, lines[1])
	assert.Equal(t, `GET|/b  , PUBLIC`, lines[2])
}

func TestUserPageHeader(t *testing.T) {
	var buf bytes.Buffer
	UserPage(&buf, &model.UserPage{
		Users:             []model.User{{ID: "u-1"}, {ID: "u-2"}},
		PaginationEnabled: true,
		Total:             11, Page: 2, PageSize: 5, TotalPages: 3,
	})
	assert.Contains(t, buf.String(), "page 2/3, total 11, showing 2 (page size 5)")

	buf.Reset()
	UserPage(&buf, &model.UserPage{Users: []model.User{{ID: "u-1"}}})
	assert.Contains(t, buf.String(), "== Users: 1 ==")
}

func TestRolesTable(t *testing.T) {
	var buf bytes.Buffer
	Roles(&buf, "Roles", []model.Role{{ID: 1, Name: "admin", IsSystem: true}, {ID: 12, Name: "editor"}})
	out := buf.String()
	assert.Contains(t, out, "== Roles (2) ==")
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "editor")
	assert.Contains(t, out, "yes")
}

func TestUserRolesTable(t *testing.T) {
	var buf bytes.Buffer
	UserRoles(&buf, "", []model.RoleRef{model.Named(3, "author"), model.ByName("viewer")})
	out := buf.String()
	assert.Contains(t, out, "author")
	assert.Contains(t, out, "viewer")
	assert.NotContains(t, out, "==")
}

func TestPrinterNoColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Success("logged in as %s", "admin@gmail.com")
	p.Info("listing roles")
	p.Error("boom")
	p.Section("Rules")

	out := buf.String()
	assert.NotContains(t, out, "\x1b[", "non-terminal output must not carry escape codes")
	assert.Contains(t, out, "[ok] logged in as admin@gmail.com\n")
	assert.Contains(t, out, "[..] listing roles\n")
	assert.Contains(t, out, "[!!] boom\n")
	assert.Contains(t, out, "=== Rules ===")
}

func TestPrinterFailure(t *testing.T) {
	_, err := client.Interpret([]byte(`{"error":{"message":"validation failed"},"type":"VALIDATION","data":{"password":"too short"}}`), 400, 201)
	require.Error(t, err)

	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	p.Failure("register", err)
	out := buf.String()
	assert.Contains(t, out, "register failed (HTTP 400, VALIDATION): validation failed")
	assert.Contains(t, out, `"password": "too short"`)

	buf.Reset()
	p.Failure("login", errors.New("plain"))
	assert.Contains(t, buf.String(), "login failed: plain")

	buf.Reset()
	p.Failure("list", &client.TransportError{Op: "list", Status: 502, Body: "<html>"})
	assert.Contains(t, buf.String(), "(TRANSPORT)")
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	require.NoError(t, p.JSON(json.RawMessage(`{"id":5}`)))
	assert.Equal(t, "{\n  \"id\": 5\n}\n", buf.String())

	// Large ids and key order survive untouched.
	buf.Reset()
	require.NoError(t, p.JSON(json.RawMessage(`{"name":"x","id":9007199254740993}`)))
	assert.Equal(t, "{\n  \"name\": \"x\",\n  \"id\": 9007199254740993\n}\n", buf.String())
}
