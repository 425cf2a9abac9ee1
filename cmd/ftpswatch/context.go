package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"ftpswatch/internal/alert"
	"ftpswatch/internal/config"
	"ftpswatch/internal/logging"
	"ftpswatch/internal/watchrun"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	// Test seams; empty in production.
	runOptions   []watchrun.Option
	alertOptions []alert.Option
	now          func() time.Time
}

type contextOption func(*commandContext)

func withRunOptions(opts ...watchrun.Option) contextOption {
	return func(c *commandContext) { c.runOptions = append(c.runOptions, opts...) }
}

func withAlertOptions(opts ...alert.Option) contextOption {
	return func(c *commandContext) { c.alertOptions = append(c.alertOptions, opts...) }
}

func newCommandContext(configFlag *string, opts ...contextOption) *commandContext {
	c := &commandContext{
		configFlag: configFlag,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// openRunLogger creates the per-run log file, points ftpswatch.log at it and
// prunes expired run logs. The closer must run before the process exits.
func (c *commandContext) openRunLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	runLogPath := logging.RunLogPath(cfg.Logging.Dir, c.now())
	logger, closer, err := logging.NewFromConfig(cfg, runLogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if err := logging.UpdateCurrentPointer(cfg.Logging.Dir, runLogPath); err != nil {
		logger.Warn("unable to update ftpswatch.log link", logging.Error(err))
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, c.now(),
		logging.RetentionTarget{Dir: cfg.Logging.Dir, Pattern: "ftpswatch-*.log", Exclude: []string{runLogPath}},
	)
	return logger, closer, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
