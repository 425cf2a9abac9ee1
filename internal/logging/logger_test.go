package logging_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ftpswatch/internal/config"
	"ftpswatch/internal/logging"
)

func newFileLogger(t *testing.T, format, level string) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, closer, err := logging.New(logging.Options{
		Format:      format,
		Level:       level,
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = closer.Close() })
	logging.NewComponentLogger(logger, "ftps").Info("ftps connected", logging.String(logging.FieldEndpoint, "ftp.example.com:21"))
	logger.Debug("debug line")
	return logPath, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	_, read := newFileLogger(t, "console", "info")
	content := read()
	if !strings.Contains(content, "INFO ftps: ftps connected") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "endpoint=ftp.example.com:21") {
		t.Fatalf("expected endpoint field, got %q", content)
	}
	if strings.Contains(content, "debug line") {
		t.Fatalf("debug output should be filtered at info level, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	_, read := newFileLogger(t, "console", "debug")
	content := read()
	if !strings.Contains(content, "debug line") {
		t.Fatalf("expected debug line, got %q", content)
	}
	if !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerWritesStructuredRecords(t *testing.T) {
	_, read := newFileLogger(t, "json", "info")
	line := strings.TrimSpace(strings.SplitN(read(), "\n", 2)[0])
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("unmarshal %q: %v", line, err)
	}
	if record["level"] != "info" || record["msg"] != "ftps connected" || record["component"] != "ftps" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Dir = t.TempDir()
	runLog := logging.RunLogPath(cfg.Logging.Dir, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
	if filepath.Base(runLog) != "ftpswatch-20240501T093000.000Z.log" {
		t.Fatalf("unexpected run log name: %q", runLog)
	}

	logger, closer, err := logging.NewFromConfig(&cfg, runLog)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("probe file not found")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	content, err := os.ReadFile(runLog)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if !strings.Contains(string(content), "WARN probe file not found") {
		t.Fatalf("unexpected run log content: %q", content)
	}

	if err := logging.UpdateCurrentPointer(cfg.Logging.Dir, runLog); err != nil {
		t.Fatalf("UpdateCurrentPointer: %v", err)
	}
	pointer, err := os.ReadFile(filepath.Join(cfg.Logging.Dir, "ftpswatch.log"))
	if err != nil {
		t.Fatalf("read pointer: %v", err)
	}
	if string(pointer) != string(content) {
		t.Fatal("expected pointer to resolve to the run log")
	}
}

func captureStreams(t *testing.T) (read func() (string, string)) {
	t.Helper()
	origOut, origErr := os.Stdout, os.Stderr
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout, os.Stderr = outW, errW
	t.Cleanup(func() { os.Stdout, os.Stderr = origOut, origErr })

	return func() (string, string) {
		os.Stdout, os.Stderr = origOut, origErr
		_ = outW.Close()
		_ = errW.Close()
		stdout, _ := io.ReadAll(outR)
		stderr, _ := io.ReadAll(errR)
		return string(stdout), string(stderr)
	}
}

func TestNewFromConfigWritesEachRecordOnce(t *testing.T) {
	cfg := config.Default()
	read := captureStreams(t)

	logger, closer, err := logging.NewFromConfig(&cfg, "")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("ftps check started")
	logger.Error("ftps check failed")
	_ = closer.Close()

	stdout, stderr := read()
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
	for _, msg := range []string{"INFO ftps check started", "ERROR ftps check failed"} {
		if n := strings.Count(stderr, msg); n != 1 {
			t.Fatalf("expected %q once on stderr, got %d in %q", msg, n, stderr)
		}
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, closer, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()

	ctx := logging.WithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, logger).Info("check started")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "run_id=run-123") {
		t.Fatalf("expected run_id field, got %q", content)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, closer, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()

	logging.WarnWithContext(logger, "probe file not found", "probe_missing")
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{"event_type=probe_missing", "error_hint=", "impact="} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}
