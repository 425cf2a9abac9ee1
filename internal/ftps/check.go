package ftps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"ftpswatch/internal/config"
	"ftpswatch/internal/logging"
)

// Outcome describes a completed check attempt. A missing probe file is still
// a completed attempt: FileFound is false and Reason says why.
type Outcome struct {
	Endpoint  string
	ProbePath string
	FileFound bool
	Reason    string
	Duration  time.Duration
}

// Checker performs one connect, login and probe cycle per Execute call.
type Checker struct {
	cfg        config.FTPS
	endpoint   string
	logger     *slog.Logger
	newSession SessionFactory
	now        func() time.Time
}

// Option customizes a Checker.
type Option func(*Checker)

// WithSessionFactory replaces the jlaffaye/ftp backed session, mainly for tests.
func WithSessionFactory(factory SessionFactory) Option {
	return func(c *Checker) {
		if factory != nil {
			c.newSession = factory
		}
	}
}

// WithClock overrides the time source used to measure attempts.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChecker builds a checker for the configured endpoint.
func NewChecker(cfg *config.Config, logger *slog.Logger, opts ...Option) *Checker {
	checker := &Checker{
		cfg:        cfg.FTPS,
		endpoint:   cfg.Endpoint(),
		logger:     logging.NewComponentLogger(logger, "ftps"),
		newSession: NewServerSession,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(checker)
		}
	}
	if cfg.FTPS.InsecureSkipVerify {
		logging.WarnWithContext(checker.logger, "ftps certificate verification disabled",
			"ftps_insecure_tls",
			logging.String(logging.FieldEndpoint, checker.endpoint),
			logging.String(logging.FieldErrorHint, "set ftps.insecure_skip_verify = false or configure ftps.ca_file"),
			logging.String(logging.FieldImpact, "server identity is not verified"),
		)
	}
	return checker
}

// Endpoint returns the host:port pair being checked.
func (c *Checker) Endpoint() string {
	return c.endpoint
}

// Execute opens a session, authenticates, confirms the session answers and
// looks for the probe file. The session is disconnected exactly once whenever
// a connect was attempted, and a disconnect failure never replaces the
// attempt's result.
func (c *Checker) Execute(ctx context.Context) (outcome Outcome, err error) {
	logger := logging.WithContext(ctx, c.logger)
	started := c.now()
	outcome = Outcome{Endpoint: c.endpoint, ProbePath: c.cfg.ProbePath}
	defer func() {
		outcome.Duration = c.now().Sub(started)
	}()

	if strings.TrimSpace(c.cfg.Host) == "" {
		return outcome, errors.WithStack(&CheckError{
			Kind: KindConfiguration,
			Op:   "connect",
			Err:  errors.New("ftps.host is not set"),
		})
	}

	session, err := c.newSession(c.cfg)
	if err != nil {
		return outcome, errors.WithStack(&CheckError{
			Kind:     KindConfiguration,
			Op:       "prepare session",
			Endpoint: c.endpoint,
			Err:      err,
		})
	}
	defer func() {
		if disconnectErr := session.Disconnect(); disconnectErr != nil {
			logging.WarnWithContext(logger, "ftps disconnect failed",
				"ftps_disconnect_failed",
				logging.String(logging.FieldEndpoint, c.endpoint),
				logging.Error(disconnectErr),
				logging.String(logging.FieldImpact, "check result unaffected"),
			)
			return
		}
		logger.Info("ftps disconnected", logging.String(logging.FieldEndpoint, c.endpoint))
	}()

	logger.Debug("ftps connecting", logging.String(logging.FieldEndpoint, c.endpoint))
	if err := session.Connect(ctx); err != nil {
		return outcome, errors.WithStack(&CheckError{Kind: KindConnection, Op: "connect", Endpoint: c.endpoint, Err: err})
	}
	if err := session.Login(c.cfg.Username, c.cfg.Password); err != nil {
		return outcome, errors.WithStack(&CheckError{Kind: KindAuthentication, Op: "login", Endpoint: c.endpoint, Err: err})
	}
	if err := session.Ping(); err != nil {
		return outcome, errors.WithStack(&CheckError{Kind: KindConnection, Op: "ping", Endpoint: c.endpoint, Err: err})
	}
	logger.Info("ftps connected",
		logging.String(logging.FieldEndpoint, c.endpoint),
		logging.String("username", c.cfg.Username),
	)

	found, err := session.FileExists(c.cfg.ProbePath)
	if err != nil {
		return outcome, errors.WithStack(&CheckError{Kind: KindConnection, Op: "probe", Endpoint: c.endpoint, Err: err})
	}
	outcome.FileFound = found
	if found {
		logger.Info("probe file present",
			logging.String(logging.FieldEndpoint, c.endpoint),
			logging.String("probe_path", c.cfg.ProbePath),
		)
		return outcome, nil
	}

	outcome.Reason = fmt.Sprintf("%s not found on %s", c.cfg.ProbePath, c.endpoint)
	logging.WarnWithContext(logger, "probe file missing",
		"ftps_probe_missing",
		logging.String(logging.FieldEndpoint, c.endpoint),
		logging.String("probe_path", c.cfg.ProbePath),
		logging.String(logging.FieldErrorHint, "confirm ftps.probe_path exists on the server"),
		logging.String(logging.FieldImpact, "connectivity confirmed; probe file absent"),
	)
	return outcome, nil
}
