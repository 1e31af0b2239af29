package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Default values applied by ApplyDefaults when the file leaves a field unset.
const (
	DefaultConcurrency         = 4
	DefaultHTTPTimeoutSeconds  = 30
	DefaultCloneTimeoutSeconds = 600
)

// Config is the top-level configuration for bulkclone. Every field maps
// to a CLI flag; flags passed explicitly take precedence over the file.
type Config struct {
	Platform    string   `yaml:"platform"`    // "gitlab" or "github"
	Group       string   `yaml:"group"`       // Group/user/org name or numeric ID
	Token       string   `yaml:"token"`       // Inline, ${ENV_VAR}, or file path
	UseSSH      bool     `yaml:"ssh"`         // Prefer SSH clone URLs
	Flatten     bool     `yaml:"flatten"`     // Ignore namespace hierarchy on disk
	Destination string   `yaml:"destination"` // Clone destination directory
	Concurrency int      `yaml:"concurrency"` // Parallel clone workers
	GitArgs     []string `yaml:"git_args"`    // Extra arguments for git clone

	HTTPTimeoutSeconds  int `yaml:"http_timeout"`
	CloneTimeoutSeconds int `yaml:"clone_timeout"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment variables
// and resolving token file paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Token = ResolveToken(cfg.Token)
	cfg.ApplyDefaults()

	if validateErr := Validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".bulkclone.yaml",
		".bulkclone.yml",
		"bulkclone.yaml",
		"bulkclone.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.HTTPTimeoutSeconds == 0 {
		c.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
	if c.CloneTimeoutSeconds == 0 {
		c.CloneTimeoutSeconds = DefaultCloneTimeoutSeconds
	}
}

// Validate checks for out-of-range configuration values. Presence of
// platform, group and token is enforced later by the CLI because flags
// may still supply them.
func Validate(cfg *Config) error {
	if cfg.Platform != "" && cfg.Platform != "gitlab" && cfg.Platform != "github" {
		return fmt.Errorf("platform must be \"gitlab\" or \"github\", got %q", cfg.Platform)
	}
	if cfg.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	if cfg.HTTPTimeoutSeconds < 0 {
		return errors.New("http_timeout must not be negative")
	}
	if cfg.CloneTimeoutSeconds < 0 {
		return errors.New("clone_timeout must not be negative")
	}
	return nil
}
