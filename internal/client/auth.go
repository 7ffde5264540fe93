package client

import (
	"context"
	"net/http"

	"github.com/authkit/authctl/internal/model"
)

// Login exchanges credentials for a bearer token and keeps the refresh
// cookie the backend sets alongside it.
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   body,
		want:   http.StatusOK,
	})
	if err != nil {
		return nil, err
	}
	var out model.LoginResult
	if err := resp.Decode(&out); err != nil {
		return nil, &TransportError{Op: "login", Status: resp.Status, Body: string(resp.Payload), Err: err}
	}
	c.token = out.Token
	c.takeRefreshCookie(resp.cookies)
	return &out, nil
}

// Register creates an account. The backend answers 201 with the new user.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := checkInput("register", req); err != nil {
		return nil, err
	}
	var out model.User
	err := c.call(ctx, request{
		op:     "register",
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   req,
		want:   http.StatusCreated,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the logged-in user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.call(ctx, request{
		op:     "change password",
		method: http.MethodPost,
		path:   "/api/auth/change-password",
		body:   map[string]string{"old_password": oldPassword, "new_password": newPassword},
		want:   http.StatusOK,
		auth:   true,
	}, nil)
}

// RequestPasswordReset asks the backend to mail a reset token.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.call(ctx, request{
		op:     "request password reset",
		method: http.MethodPost,
		path:   "/api/auth/request-password-reset",
		body:   map[string]string{"email": email},
		want:   http.StatusOK,
	}, nil)
}

// ResetPassword sets a new password using a mailed reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.call(ctx, request{
		op:     "reset password",
		method: http.MethodPost,
		path:   "/api/auth/reset-password",
		body:   map[string]string{"token": token, "new_password": newPassword},
		want:   http.StatusOK,
	}, nil)
}

// Refresh trades the refresh cookie for a new access token. The backend
// rotates the cookie on every use.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	if c.refreshToken == "" {
		return "", ErrNoRefreshToken
	}
	resp, err := c.do(ctx, request{
		op:     "refresh",
		method: http.MethodPost,
		path:   "/api/auth/refresh",
		want:   http.StatusOK,
		cookie: true,
	})
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", &TransportError{Op: "refresh", Status: resp.Status, Body: string(resp.Payload), Err: err}
	}
	c.token = out.Token
	c.takeRefreshCookie(resp.cookies)
	return out.Token, nil
}

// Logout revokes the refresh cookie server-side and forgets both tokens.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{
		op:     "logout",
		method: http.MethodPost,
		path:   "/api/auth/logout",
		want:   http.StatusOK,
		cookie: true,
	})
	c.token = ""
	c.refreshToken = ""
	return err
}

func (c *Client) takeRefreshCookie(cookies []*http.Cookie) {
	for _, ck := range cookies {
		if ck.Name != RefreshCookie {
			continue
		}
		if ck.MaxAge < 0 || ck.Value == "" {
			c.refreshToken = ""
		} else {
			c.refreshToken = ck.Value
		}
	}
}
