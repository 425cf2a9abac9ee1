package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ftpswatch/internal/ftps"
)

type cliTestEnv struct {
	configPath string
	logDir     string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"FTPS_HOST", "FTPS_USERNAME", "FTPS_PASSWORD", "SMTP_HOST", "SMTP_USERNAME", "SMTP_PASSWORD", "FTPSWATCH_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		logDir:     filepath.Join(base, "logs"),
		baseDir:    base,
	}
	writeTestConfig(t, env.configPath, env.logDir)
	return env
}

func writeTestConfig(t *testing.T, path, logDir string) {
	t.Helper()
	content := fmt.Sprintf(`[ftps]
host = "ftp.example.com"
username = "monitor"
password = "ftps-secret"

[smtp]
host = "smtp.example.com"
from_address = "ftpswatch@example.com"
to_address = "ops@example.com"
password = "smtp-secret"

[retry]
policy = "immediate"

[logging]
dir = %q
level = "error"
`, logDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string, opts ...contextOption) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

type stubChecker struct {
	err   error
	calls int
}

func (s *stubChecker) Execute(context.Context) (ftps.Outcome, error) {
	s.calls++
	if s.err != nil {
		return ftps.Outcome{}, s.err
	}
	return ftps.Outcome{Endpoint: "ftp.example.com:21", FileFound: true}, nil
}

type stubAlerter struct {
	causes []error
}

func (s *stubAlerter) Send(_ context.Context, cause error) error {
	s.causes = append(s.causes, cause)
	return nil
}
