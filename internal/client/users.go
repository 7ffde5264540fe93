package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/authkit/authctl/internal/model"
)

// Profile returns the logged-in user.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var out model.User
	err := c.call(ctx, request{
		op:     "get profile",
		method: http.MethodGet,
		path:   "/api/auth/profile",
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfileByIdentifier returns a user and their roles by id or email.
func (c *Client) ProfileByIdentifier(ctx context.Context, identifier string) (*model.UserDetail, error) {
	var out model.UserDetail
	err := c.call(ctx, request{
		op:     "get profile",
		method: http.MethodGet,
		path:   "/api/auth/profile/" + segment(identifier),
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UserRoles returns the roles of the user named by identifier.
func (c *Client) UserRoles(ctx context.Context, identifier string) ([]model.RoleRef, error) {
	detail, err := c.ProfileByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(detail.Roles) > 0 {
		return detail.Roles, nil
	}
	return detail.User.Roles, nil
}

// UpdateProfile updates the logged-in user's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, fields model.ProfileUpdate) (*model.User, error) {
	return c.updateProfile(ctx, "/api/auth/profile", fields)
}

// UpdateProfileByID updates another user's profile fields.
func (c *Client) UpdateProfileByID(ctx context.Context, id string, fields model.ProfileUpdate) (*model.User, error) {
	return c.updateProfile(ctx, "/api/auth/profile/"+segment(id), fields)
}

func (c *Client) updateProfile(ctx context.Context, path string, fields model.ProfileUpdate) (*model.User, error) {
	if fields.Empty() {
		return nil, &InputError{Op: "update profile", Fields: map[string]string{"fields": "at least one field is required"}}
	}
	var out model.User
	err := c.call(ctx, request{
		op:     "update profile",
		method: http.MethodPut,
		path:   path,
		body:   fields,
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.call(ctx, request{
		op:     "delete user",
		method: http.MethodDelete,
		path:   "/api/auth/profile/" + segment(id),
		want:   http.StatusOK,
		auth:   true,
	}, nil)
}

// ListUsers returns one page of users. Backends with pagination turned
// off return a bare array, which is reported as a single page.
func (c *Client) ListUsers(ctx context.Context, q model.UserQuery) (*model.UserPage, error) {
	if err := checkInput("list users", q); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, request{
		op:     "list users",
		method: http.MethodGet,
		path:   "/api/user",
		query:  userQueryValues(q),
		want:   http.StatusOK,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	var page model.UserPage
	if bytes.HasPrefix(bytes.TrimSpace(resp.Payload), []byte("[")) {
		err = json.Unmarshal(resp.Payload, &page.Users)
		page.Total = len(page.Users)
	} else {
		err = resp.Decode(&page)
	}
	if err != nil {
		return nil, &TransportError{Op: "list users", Status: resp.Status, Body: string(resp.Payload), Err: err}
	}
	return &page, nil
}

func userQueryValues(q model.UserQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	setIf(v, "email", q.Email)
	setIf(v, "full_name", q.FullName)
	setIf(v, "address", q.Address)
	setIf(v, "sort_by", q.SortBy)
	setIf(v, "order", q.Order)
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
