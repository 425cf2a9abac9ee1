package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// FTPS contains the transfer endpoint settings.
type FTPS struct {
	Host     string `toml:"host" validate:"omitempty,hostname_rfc1123|ip"`
	Port     int    `toml:"port" validate:"min=1,max=65535"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	// ProbePath is the remote file whose presence is checked after login.
	ProbePath string `toml:"probe_path"`
	// InsecureSkipVerify disables server certificate validation. Off by default.
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	CAFile             string `toml:"ca_file"`
	ServerName         string `toml:"server_name"`
	TimeoutSeconds     int    `toml:"timeout_seconds" validate:"min=1"`
}

// SMTP contains the alert mail settings.
type SMTP struct {
	Host            string `toml:"host" validate:"omitempty,hostname_rfc1123|ip"`
	Port            int    `toml:"port" validate:"min=1,max=65535"`
	FromAddress     string `toml:"from_address" validate:"omitempty,email"`
	FromDisplayName string `toml:"from_display_name"`
	ToAddress       string `toml:"to_address" validate:"omitempty,email"`
	ToDisplayName   string `toml:"to_display_name"`
	Subject         string `toml:"subject"`
	Username        string `toml:"username"`
	Password        string `toml:"password"`
	TLSPolicy       string `toml:"tls_policy" validate:"oneof=opportunistic mandatory none"`
	TimeoutSeconds  int    `toml:"timeout_seconds" validate:"min=1"`
}

// Retry contains the bounded retry settings for the connectivity check.
type Retry struct {
	MaxExtraAttempts   int     `toml:"max_extra_attempts" validate:"min=0"`
	IntervalSeconds    int     `toml:"interval_seconds" validate:"min=0"`
	Policy             string  `toml:"policy" validate:"oneof=fixed exponential jittered immediate"`
	MaxIntervalSeconds int     `toml:"max_interval_seconds" validate:"min=0"`
	JitterFraction     float64 `toml:"jitter_fraction" validate:"min=0,max=1"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for ftpswatch.
//
// Configuration sections by subsystem:
//   - FTPS: endpoint, credentials, probe path and TLS posture
//   - SMTP: alert sender, recipient and mail server
//   - Retry: attempt bound and back-off policy
//   - Logging: log format, level, directory and retention
type Config struct {
	FTPS    FTPS    `toml:"ftps"`
	SMTP    SMTP    `toml:"smtp"`
	Retry   Retry   `toml:"retry"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error: defaults and environment fallbacks apply. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads a .env file next to the config file into the process
// environment. Variables that are already set win.
func loadDotEnv(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	envPath := filepath.Join(dir, ".env")
	info, err := os.Stat(envPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if info.IsDir() {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("load env file %s: %w", envPath, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ftpswatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Logging.Dir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Logging.Dir, err)
	}
	return nil
}

// Endpoint returns the host:port pair of the transfer endpoint.
func (c *Config) Endpoint() string {
	return net.JoinHostPort(c.FTPS.Host, strconv.Itoa(c.FTPS.Port))
}

// LockPath returns the advisory lock file guarding against overlapping runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Logging.Dir, "ftpswatch.lock")
}

// Missing lists settings a successful run and alert depend on but that are
// empty. Load does not reject these so an absent file still loads; the check
// and the alert fail downstream instead.
func (c *Config) Missing() []string {
	var missing []string
	required := []struct {
		key   string
		value string
	}{
		{"ftps.host", c.FTPS.Host},
		{"ftps.username", c.FTPS.Username},
		{"ftps.password", c.FTPS.Password},
		{"ftps.probe_path", c.FTPS.ProbePath},
		{"smtp.host", c.SMTP.Host},
		{"smtp.from_address", c.SMTP.FromAddress},
		{"smtp.to_address", c.SMTP.ToAddress},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	return missing
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
