package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the top-level authctl.yaml file.
type YAMLConfig struct {
	API      APIConfig      `yaml:"api" mapstructure:"api"`
	Accounts AccountsConfig `yaml:"accounts" mapstructure:"accounts"`
	Log      LoggingConfig  `yaml:"log" mapstructure:"log"`
	Verify   VerifyConfig   `yaml:"verify" mapstructure:"verify"`
	MCP      MCPConfig      `yaml:"mcp" mapstructure:"mcp"`
}

// APIConfig points authctl at an authkit backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
	// RateLimit is requests per second; 0 disables client-side pacing.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Account is a named credential pair used by login --account.
type Account struct {
	Email    string `yaml:"email" mapstructure:"email"`
	Password string `yaml:"password" mapstructure:"password"`
}

// AccountsConfig holds the two well-known accounts of a fresh backend.
type AccountsConfig struct {
	Admin      Account `yaml:"admin" mapstructure:"admin"`
	SuperAdmin Account `yaml:"super_admin" mapstructure:"super_admin"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// VerifyConfig enables direct checks against the backend's database.
type VerifyConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// MCPConfig controls the MCP (Model Context Protocol) server.
type MCPConfig struct {
	Transport string `yaml:"transport" mapstructure:"transport"`
	Port      int    `yaml:"port" mapstructure:"port"`
}

// LoadYAMLConfig reads and parses a YAML configuration file. Environment
// variables referenced as ${VAR_NAME} in the file are expanded before parsing.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := DefaultYAMLConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// DefaultYAMLConfig returns a YAMLConfig pre-filled with the defaults of a
// freshly seeded local backend.
func DefaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: "10s",
		},
		Accounts: AccountsConfig{
			Admin:      Account{Email: "admin@gmail.com", Password: "123456"},
			SuperAdmin: Account{Email: "superadmin@gmail.com", Password: "123456"},
		},
		Log: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      8090,
		},
	}
}

// WriteDefaultConfig writes the default configuration to a YAML file.
func WriteDefaultConfig(path string) error {
	cfg := DefaultYAMLConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
