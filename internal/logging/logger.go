package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ftpswatch/internal/config"
)

// Options describes logger construction parameters. Every record goes to
// each of OutputPaths once; "stdout" and "stderr" name the process streams.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
}

// New constructs a slog logger using the provided options. The returned
// closer syncs and closes any log files opened for the logger; stdout and
// stderr are left open.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputWriter, files, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}))
	if err != nil {
		return nil, nil, err
	}
	closer := fileCloser(files)

	addSource := level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(outputWriter, levelVar, addSource)
	case "console":
		handler = newConsoleHandler(outputWriter, levelVar, addSource)
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return slog.New(handler), closer, nil
}

// NewFromConfig creates a logger using application config defaults. Records
// go to stderr, leaving stdout to command output. When runLogPath is set,
// output is also appended to that file.
func NewFromConfig(cfg *config.Config, runLogPath string) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stderr"}})
	}

	outputPaths := []string{"stderr"}
	if strings.TrimSpace(runLogPath) != "" {
		outputPaths = append(outputPaths, runLogPath)
	}

	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputPaths,
	})
}

// RunLogPath returns the per-run log file name inside dir.
func RunLogPath(dir string, started time.Time) string {
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, fmt.Sprintf("ftpswatch-%s.log", started.UTC().Format("20060102T150405.000Z")))
}

// UpdateCurrentPointer points <dir>/ftpswatch.log at target, using a symlink
// when possible and a hard link otherwise.
func UpdateCurrentPointer(dir, target string) error {
	if dir == "" || target == "" {
		return nil
	}
	current := filepath.Join(dir, "ftpswatch.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

func openWriters(outputPaths []string) (io.Writer, []*os.File, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer
	var files []*os.File

	for _, path := range outputPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := ensureLogDir(trimmed); err != nil {
				_ = fileCloser(files).Close()
				return nil, nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				_ = fileCloser(files).Close()
				return nil, nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
			files = append(files, file)
		}
	}

	if len(writers) == 0 {
		return os.Stderr, files, nil
	}
	if len(writers) == 1 {
		return writers[0], files, nil
	}
	return io.MultiWriter(writers...), files, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

type fileCloser []*os.File

func (f fileCloser) Close() error {
	var errs []error
	for _, file := range f {
		if err := file.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", file.Name(), err))
		}
		if err := file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", file.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}
