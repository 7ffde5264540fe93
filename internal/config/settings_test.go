package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	s, err := FromViper(NewViper())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if s.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %q, want %q", s.BaseURL, "http://localhost:3000")
	}
	if s.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", s.Timeout)
	}
	if s.Admin.Email != "admin@gmail.com" {
		t.Errorf("Admin.Email = %q", s.Admin.Email)
	}
	if s.SuperAdmin.Email != "superadmin@gmail.com" {
		t.Errorf("SuperAdmin.Email = %q", s.SuperAdmin.Email)
	}
	if s.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", s.LogFormat)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AUTHCTL_API_BASE_URL", "http://api.internal:8080")
	t.Setenv("AUTHCTL_API_TIMEOUT", "3s")
	t.Setenv("AUTHCTL_ACCOUNTS_ADMIN_EMAIL", "ops@example.com")

	s, err := FromViper(NewViper())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if s.BaseURL != "http://api.internal:8080" {
		t.Errorf("BaseURL = %q", s.BaseURL)
	}
	if s.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", s.Timeout)
	}
	if s.Admin.Email != "ops@example.com" {
		t.Errorf("Admin.Email = %q", s.Admin.Email)
	}
}

func TestReadConfigFileExpandsEnv(t *testing.T) {
	t.Setenv("AUTHKIT_TEST_DSN", "postgres://u:p@db/authkit")
	path := filepath.Join(t.TempDir(), "authctl.yaml")
	content := `api:
  base_url: http://example.test
  timeout: 2s
  rate_limit: 5
verify:
  dsn: ${AUTHKIT_TEST_DSN}
log:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	v := NewViper()
	if err := ReadConfigFile(v, path); err != nil {
		t.Fatalf("ReadConfigFile: %v", err)
	}
	s, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if s.BaseURL != "http://example.test" {
		t.Errorf("BaseURL = %q", s.BaseURL)
	}
	if s.RateLimit != 5 {
		t.Errorf("RateLimit = %v, want 5", s.RateLimit)
	}
	if s.VerifyDSN != "postgres://u:p@db/authkit" {
		t.Errorf("VerifyDSN = %q", s.VerifyDSN)
	}
	if s.LogFormat != "json" {
		t.Errorf("LogFormat = %q", s.LogFormat)
	}
	// Keys absent from the file keep their defaults.
	if s.Admin.Email != "admin@gmail.com" {
		t.Errorf("Admin.Email = %q", s.Admin.Email)
	}
	if got := v.ConfigFileUsed(); got != path {
		t.Errorf("ConfigFileUsed = %q, want %q", got, path)
	}
}

func TestFromViperRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"AUTHCTL_API_TIMEOUT", "soon"},
		{"AUTHCTL_API_TIMEOUT", "-1s"},
		{"AUTHCTL_LOG_FORMAT", "xml"},
		{"AUTHCTL_API_RATE_LIMIT", "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := FromViper(NewViper()); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("AUTHCTL_TEST_DOTENV=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AUTHCTL_TEST_DOTENV", "")
	os.Unsetenv("AUTHCTL_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("AUTHCTL_TEST_DOTENV"); got != "from-file" {
		t.Errorf("got %q, want %q", got, "from-file")
	}
}

func TestAccountLookup(t *testing.T) {
	s, _ := FromViper(NewViper())
	for _, name := range []string{"admin", "super_admin", "super-admin", "SuperAdmin"} {
		if _, err := s.Account(name); err != nil {
			t.Errorf("Account(%q): %v", name, err)
		}
	}
	if _, err := s.Account("root"); err == nil {
		t.Error("expected error for unknown account")
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authctl.yaml")
	if err := WriteDefaultConfig(path); err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}
	cfg, err := LoadYAMLConfig(path)
	if err != nil {
		t.Fatalf("LoadYAMLConfig: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:3000" || cfg.MCP.Transport != "stdio" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
