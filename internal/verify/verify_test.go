package verify

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestCascadeReportClean(t *testing.T) {
	tests := []struct {
		name string
		r    CascadeReport
		want bool
	}{
		{"all gone", CascadeReport{RoleID: 9}, true},
		{"role left", CascadeReport{RoleExists: true}, false},
		{"user link left", CascadeReport{UserLinks: 1}, false},
		{"rule mention left", CascadeReport{RuleMentions: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Clean(); got != tt.want {
				t.Errorf("Clean() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

// integrationDSN returns the backend database DSN or skips the test.
func integrationDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("AUTHCTL_VERIFY_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: set AUTHCTL_VERIFY_DSN to run")
	}
	return dsn
}

func TestIntegrationCascadeOfMissingRole(t *testing.T) {
	dsn := integrationDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	// An id far outside any seeded range has nothing attached to it.
	r, err := c.Cascade(ctx, 987654321)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	if !r.Clean() {
		t.Errorf("expected clean report, got %+v", r)
	}

	ids, err := c.UserRoleIDs(ctx, "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("UserRoleIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("got %v, want no roles", ids)
	}
}
