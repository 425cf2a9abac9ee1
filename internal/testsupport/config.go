package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ftpswatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a complete config whose log directory lives in a
// per-test temp directory. Retries are immediate so tests never sleep.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.FTPS.Host = "ftp.example.com"
	cfgVal.FTPS.Username = "monitor"
	cfgVal.FTPS.Password = "secret"
	cfgVal.SMTP.Host = "smtp.example.com"
	cfgVal.SMTP.FromAddress = "ftpswatch@example.com"
	cfgVal.SMTP.FromDisplayName = "FTPS Watch"
	cfgVal.SMTP.ToAddress = "ops@example.com"
	cfgVal.SMTP.ToDisplayName = "Operations"
	cfgVal.Retry.Policy = "immediate"
	cfgVal.Retry.IntervalSeconds = 0
	cfgVal.Logging.Dir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.Logging.Dir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	return builder.cfg
}

// WithMaxExtraAttempts overrides the retry bound.
func WithMaxExtraAttempts(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Retry.MaxExtraAttempts = n
	}
}

// WithFixedInterval switches the retry policy to fixed with the given seconds.
func WithFixedInterval(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Retry.Policy = "fixed"
		b.cfg.Retry.IntervalSeconds = seconds
	}
}

// WithFTPSHost overrides the endpoint host. An empty host is allowed.
func WithFTPSHost(host string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FTPS.Host = host
	}
}

// WithoutSMTP clears the mail server so alert delivery fails.
func WithoutSMTP() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SMTP.Host = ""
	}
}
