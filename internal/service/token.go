package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned for strings that are not a JWT.
var ErrMalformedToken = errors.New("malformed token")

// TokenInfo holds the claims authkit puts in its access tokens.
type TokenInfo struct {
	UserID    string
	Email     string
	Username  string
	RoleIDs   []int64
	RoleNames []string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// ExpiresWithin reports whether the token expires in less than d from now.
// Tokens without an expiry never do.
func (t *TokenInfo) ExpiresWithin(d time.Duration) bool {
	return t.ExpiresAt != nil && time.Until(*t.ExpiresAt) < d
}

// InspectToken decodes the claims of raw without verifying its signature.
// authctl never holds the backend's signing secret; it only reads the
// claims to display them and to schedule refreshes.
func InspectToken(raw string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	info := &TokenInfo{
		UserID:   claimString(claims, "user_id"),
		Email:    claimString(claims, "email"),
		Username: claimString(claims, "username"),
	}
	if iss, err := claims.GetIssuer(); err == nil {
		info.Issuer = iss
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	if ids, ok := claims["role_ids"].([]any); ok {
		for _, v := range ids {
			if f, ok := v.(float64); ok {
				info.RoleIDs = append(info.RoleIDs, int64(f))
			}
		}
	}
	if names, ok := claims["roles"].([]any); ok {
		for _, v := range names {
			if s, ok := v.(string); ok {
				info.RoleNames = append(info.RoleNames, s)
			}
		}
	}
	return info, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
