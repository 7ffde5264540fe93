package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestInspectToken(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	raw := signToken(t, jwt.MapClaims{
		"user_id":  "0190a1b2-0000-7000-8000-000000000001",
		"email":    "admin@gmail.com",
		"role_ids": []int{1, 3},
		"roles":    []string{"admin", "editor"},
		"iss":      "authkit",
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	})

	info, err := InspectToken(raw)
	if err != nil {
		t.Fatalf("InspectToken: %v", err)
	}
	if info.UserID != "0190a1b2-0000-7000-8000-000000000001" {
		t.Errorf("UserID = %q", info.UserID)
	}
	if info.Email != "admin@gmail.com" {
		t.Errorf("Email = %q", info.Email)
	}
	if info.Issuer != "authkit" {
		t.Errorf("Issuer = %q", info.Issuer)
	}
	if len(info.RoleIDs) != 2 || info.RoleIDs[0] != 1 || info.RoleIDs[1] != 3 {
		t.Errorf("RoleIDs = %v, want [1 3]", info.RoleIDs)
	}
	if len(info.RoleNames) != 2 || info.RoleNames[1] != "editor" {
		t.Errorf("RoleNames = %v", info.RoleNames)
	}
	if info.ExpiresAt == nil || !info.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", info.ExpiresAt, now.Add(time.Hour))
	}
	if info.ExpiresWithin(time.Minute) {
		t.Error("token valid for an hour must not expire within a minute")
	}
	if !info.ExpiresWithin(2 * time.Hour) {
		t.Error("token valid for an hour expires within two hours")
	}
}

func TestInspectTokenIgnoresSignature(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{"email": "x@y.z", "exp": time.Now().Add(-time.Hour).Unix()})
	// Expired and signed with a secret we don't know; still readable.
	info, err := InspectToken(raw)
	if err != nil {
		t.Fatalf("InspectToken: %v", err)
	}
	if !info.ExpiresWithin(0) {
		t.Error("expired token must report ExpiresWithin(0)")
	}
}

func TestInspectTokenNoExpiry(t *testing.T) {
	info, err := InspectToken(signToken(t, jwt.MapClaims{"user_id": 42}))
	if err != nil {
		t.Fatalf("InspectToken: %v", err)
	}
	if info.UserID != "42" {
		t.Errorf("UserID = %q, want %q", info.UserID, "42")
	}
	if info.ExpiresWithin(24 * time.Hour) {
		t.Error("token without exp never expires")
	}
}

func TestInspectTokenMalformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := InspectToken(raw); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("InspectToken(%q): got %v, want ErrMalformedToken", raw, err)
		}
	}
}
