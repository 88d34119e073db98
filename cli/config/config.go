// Package config handles CLI configuration loading.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/petal-labs/coverkit/cli/keystore"
	"github.com/petal-labs/coverkit/core"
)

// Default values applied when neither the file nor the environment set one.
const (
	DefaultProvider   = "gemini"
	DefaultListenAddr = "127.0.0.1:8080"
	DefaultEnv        = "production"
)

// Config represents the CLI configuration.
type Config struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model,omitempty"`
	BaseURL         string `yaml:"base_url,omitempty"`
	DefaultPlatform string `yaml:"default_platform"`
	OutputDir       string `yaml:"output_dir"`
	Env             string `yaml:"env"`
	ListenAddr      string `yaml:"listen_addr"`
}

// envOverrides maps COVERKIT_* variables onto config fields.
var envOverrides = []struct {
	name  string
	field func(*Config) *string
}{
	{"COVERKIT_PROVIDER", func(c *Config) *string { return &c.Provider }},
	{"COVERKIT_MODEL", func(c *Config) *string { return &c.Model }},
	{"COVERKIT_BASE_URL", func(c *Config) *string { return &c.BaseURL }},
	{"COVERKIT_PLATFORM", func(c *Config) *string { return &c.DefaultPlatform }},
	{"COVERKIT_OUTPUT_DIR", func(c *Config) *string { return &c.OutputDir }},
	{"COVERKIT_ENV", func(c *Config) *string { return &c.Env }},
	{"COVERKIT_LISTEN_ADDR", func(c *Config) *string { return &c.ListenAddr }},
}

// DefaultConfigPath returns the default configuration file path for the current platform.
// - macOS/Linux: ~/.coverkit/config.yaml
// - Windows: %USERPROFILE%\.coverkit\config.yaml
func DefaultConfigPath() string {
	return filepath.Join(keystore.HomeDir(), "config.yaml")
}

// Defaults returns a config with every default applied.
func Defaults() *Config {
	return &Config{
		Provider:        DefaultProvider,
		DefaultPlatform: string(core.DefaultPlatformID),
		OutputDir:       ".",
		Env:             DefaultEnv,
		ListenAddr:      DefaultListenAddr,
	}
}

// LoadDotenv loads .env and .env.local from the working directory into the
// process environment. Missing files are ignored and existing variables
// are never overwritten.
func LoadDotenv() {
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Load(name)
	}
}

// LoadConfig loads configuration from the specified path, then applies
// COVERKIT_* environment overrides. If the file doesn't exist, defaults are
// used without error. Returns an error only if the file exists but cannot
// be read or parsed.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			*o.field(cfg) = v
		}
	}

	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Platform returns the configured default platform id.
func (c *Config) Platform() core.PlatformID {
	if c.DefaultPlatform == "" {
		return core.DefaultPlatformID
	}
	return core.PlatformID(c.DefaultPlatform)
}
