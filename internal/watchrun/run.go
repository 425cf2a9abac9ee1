package watchrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ftpswatch/internal/alert"
	"ftpswatch/internal/config"
	"ftpswatch/internal/ftps"
	"ftpswatch/internal/logging"
	"ftpswatch/internal/retry"
)

// ErrAlreadyRunning is returned when another run holds the lock file.
var ErrAlreadyRunning = errors.New("another ftpswatch run is in progress")

// Checker runs one connectivity attempt.
type Checker interface {
	Execute(ctx context.Context) (ftps.Outcome, error)
}

// Alerter delivers the failure alert.
type Alerter interface {
	Send(ctx context.Context, cause error) error
}

// Result summarizes a run for the caller.
type Result struct {
	RunID    string
	Attempts int
	Outcome  ftps.Outcome
	Alerted  bool
	Duration time.Duration
}

// Runner wires the check, the retry policy and the alert for one invocation.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	checker Checker
	alerter Alerter
	policy  retry.Policy
	sleep   func(ctx context.Context, d time.Duration) error
	noAlert bool
	newID   func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithChecker replaces the FTPS checker.
func WithChecker(checker Checker) Option {
	return func(r *Runner) { r.checker = checker }
}

// WithAlerter replaces the email notifier.
func WithAlerter(alerter Alerter) Option {
	return func(r *Runner) { r.alerter = alerter }
}

// WithPolicy overrides the back-off policy built from configuration.
func WithPolicy(policy retry.Policy) Option {
	return func(r *Runner) { r.policy = policy }
}

// WithSleep overrides the pause between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) { r.sleep = sleep }
}

// WithoutAlert logs exhaustion but sends nothing.
func WithoutAlert() Option {
	return func(r *Runner) { r.noAlert = true }
}

// New builds a runner from configuration. Collaborators not supplied through
// options are created from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "watchrun"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.checker == nil {
		r.checker = ftps.NewChecker(cfg, logger)
	}
	if r.alerter == nil {
		r.alerter = alert.NewNotifier(cfg, logger)
	}
	if r.policy == nil {
		policy, err := retry.PolicyFromName(
			cfg.Retry.Policy,
			time.Duration(cfg.Retry.IntervalSeconds)*time.Second,
			time.Duration(cfg.Retry.MaxIntervalSeconds)*time.Second,
			cfg.Retry.JitterFraction,
		)
		if err != nil {
			return nil, err
		}
		r.policy = policy
	}
	return r, nil
}

// Run performs one scheduled health check. It returns nil when an attempt
// succeeds. After the last failed attempt it sends one alert and returns the
// check failure, joined with the alert failure if delivery failed too.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	result := Result{RunID: r.newID()}
	ctx = logging.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, r.logger)

	if err := r.cfg.EnsureDirectories(); err != nil {
		return result, err
	}
	lock := flock.New(r.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		logging.WarnWithContext(logger, "run skipped; lock held",
			"run_overlap",
			logging.String("lock", r.cfg.LockPath()),
			logging.String(logging.FieldErrorHint, "lengthen the schedule interval or lower retry.max_extra_attempts"),
			logging.String(logging.FieldImpact, "this invocation performed no check"),
		)
		return result, ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	endpoint := r.cfg.Endpoint()
	logger.Info("ftps check started",
		logging.String(logging.FieldEndpoint, endpoint),
		logging.Int("max_attempts", max(r.cfg.Retry.MaxExtraAttempts, 0)+1),
		logging.String("policy", r.cfg.Retry.Policy),
	)

	runner := retry.Runner{
		MaxExtraAttempts: r.cfg.Retry.MaxExtraAttempts,
		Policy:           r.policy,
		Sleep:            r.sleep,
		OnFailure: func(a retry.Attempt) {
			attrs := []logging.Attr{
				logging.Int(logging.FieldAttempt, a.Number),
				logging.Int("max_attempts", a.Max),
				logging.String(logging.FieldEndpoint, endpoint),
				logging.String("kind", string(ftps.KindOf(a.Err))),
				logging.Error(a.Err),
			}
			if !a.Final {
				attrs = append(attrs, logging.Duration("retry_in", a.Delay))
			}
			logger.Warn("ftps check attempt failed", logging.Args(attrs...)...)
		},
	}
	checkErr := runner.Run(ctx, func(ctx context.Context) error {
		result.Attempts++
		outcome, err := r.checker.Execute(ctx)
		if err != nil {
			return err
		}
		result.Outcome = outcome
		return nil
	})
	result.Duration = time.Since(started)

	if checkErr == nil {
		logger.Info("ftps check succeeded",
			logging.String(logging.FieldEndpoint, endpoint),
			logging.Int("attempts", result.Attempts),
			logging.Bool("probe_found", result.Outcome.FileFound),
			logging.Duration("attempt_elapsed", result.Outcome.Duration),
			logging.Duration("elapsed", result.Duration),
		)
		return result, nil
	}

	logging.ErrorWithContext(logger, "ftps check failed",
		"ftps_check_failed",
		logging.String(logging.FieldEndpoint, endpoint),
		logging.Int("attempts", result.Attempts),
		logging.String("kind", string(ftps.KindOf(checkErr))),
		logging.Error(checkErr),
		logging.String(logging.FieldErrorHint, "verify the server is reachable and the credentials are valid"),
	)

	if r.noAlert {
		logger.Info("alert suppressed", logging.String("reason", "--no-alert"))
		return result, checkErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Info("alert skipped; run interrupted", logging.Error(ctxErr))
		return result, fmt.Errorf("%w; %w", checkErr, ctxErr)
	}

	if alertErr := r.alerter.Send(ctx, checkErr); alertErr != nil {
		logging.ErrorWithContext(logger, "alert delivery failed",
			"alert_failed",
			logging.Error(alertErr),
			logging.String(logging.FieldErrorHint, "check the [smtp] settings with ftpswatch test-alert"),
		)
		return result, fmt.Errorf("%w; alert: %w", checkErr, alertErr)
	}
	result.Alerted = true
	return result, checkErr
}

// Run is shorthand for New followed by Runner.Run.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (Result, error) {
	runner, err := New(cfg, logger, opts...)
	if err != nil {
		return Result{}, err
	}
	return runner.Run(ctx)
}
