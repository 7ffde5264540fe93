package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AUTHCTL_API_BASE_URL.
const EnvPrefix = "AUTHCTL"

// Settings is the effective configuration after defaults, the YAML file,
// .env and environment variables have been merged.
type Settings struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimit    float64
	Admin        Account
	SuperAdmin   Account
	LogLevel     string
	LogFormat    string
	VerifyDSN    string
	MCPTransport string
	MCPPort      int
}

// NewViper returns a viper instance with defaults and env binding set up.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultYAMLConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("accounts.admin.email", d.Accounts.Admin.Email)
	v.SetDefault("accounts.admin.password", d.Accounts.Admin.Password)
	v.SetDefault("accounts.super_admin.email", d.Accounts.SuperAdmin.Email)
	v.SetDefault("accounts.super_admin.password", d.Accounts.SuperAdmin.Password)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("verify.dsn", "")
	v.SetDefault("mcp.transport", d.MCP.Transport)
	v.SetDefault("mcp.port", d.MCP.Port)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ReadConfigFile merges a YAML file into v after expanding ${VAR}
// references, the same way LoadYAMLConfig does.
func ReadConfigFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	v.SetConfigType("yaml")
	if err := v.MergeConfig(bytes.NewReader([]byte(os.ExpandEnv(string(data))))); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	v.SetConfigFile(path)
	return nil
}

// FindConfigFile returns the first authctl.yaml found in dirs.
func FindConfigFile(dirs ...string) string {
	for _, dir := range dirs {
		for _, name := range []string{"authctl.yaml", "authctl.yml"} {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// FromViper resolves Settings from v.
func FromViper(v *viper.Viper) (Settings, error) {
	s := Settings{
		BaseURL:   strings.TrimSpace(v.GetString("api.base_url")),
		RateLimit: v.GetFloat64("api.rate_limit"),
		Admin: Account{
			Email:    v.GetString("accounts.admin.email"),
			Password: v.GetString("accounts.admin.password"),
		},
		SuperAdmin: Account{
			Email:    v.GetString("accounts.super_admin.email"),
			Password: v.GetString("accounts.super_admin.password"),
		},
		LogLevel:     strings.ToLower(v.GetString("log.level")),
		LogFormat:    strings.ToLower(v.GetString("log.format")),
		VerifyDSN:    v.GetString("verify.dsn"),
		MCPTransport: v.GetString("mcp.transport"),
		MCPPort:      v.GetInt("mcp.port"),
	}

	timeout, err := time.ParseDuration(v.GetString("api.timeout"))
	if err != nil {
		return Settings{}, fmt.Errorf("api.timeout: %w", err)
	}
	if timeout <= 0 {
		return Settings{}, fmt.Errorf("api.timeout must be positive, got %s", timeout)
	}
	s.Timeout = timeout

	if s.RateLimit < 0 {
		return Settings{}, fmt.Errorf("api.rate_limit must not be negative, got %v", s.RateLimit)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return Settings{}, fmt.Errorf("log.format must be text or json, got %q", s.LogFormat)
	}
	return s, nil
}

// Account returns the named well-known account ("admin" or "super_admin").
func (s Settings) Account(name string) (Account, error) {
	switch strings.ReplaceAll(strings.ToLower(name), "-", "_") {
	case "admin":
		return s.Admin, nil
	case "super_admin", "superadmin":
		return s.SuperAdmin, nil
	}
	return Account{}, fmt.Errorf("unknown account %q (want admin or super_admin)", name)
}
