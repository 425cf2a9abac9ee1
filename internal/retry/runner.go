package retry

import (
	"context"
	"time"
)

// Action is one attempt of the retried operation.
type Action func(ctx context.Context) error

// Attempt describes a failed attempt, reported to Runner.OnFailure.
type Attempt struct {
	// Number is 1-based.
	Number int
	// Max is the total number of attempts the runner will make.
	Max int
	Err error
	// Delay is the pause before the next attempt; zero when Final.
	Delay time.Duration
	Final bool
}

// Runner executes an action up to MaxExtraAttempts+1 times.
type Runner struct {
	// MaxExtraAttempts bounds the attempts after the first. Negative values
	// behave like 0.
	MaxExtraAttempts int
	// Policy defaults to Immediate.
	Policy Policy
	// Sleep pauses between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnFailure is called after every failed attempt.
	OnFailure func(Attempt)
}

// Do runs action with a Runner built from the arguments.
func Do(ctx context.Context, maxExtraAttempts int, policy Policy, action Action) error {
	return Runner{MaxExtraAttempts: maxExtraAttempts, Policy: policy}.Run(ctx, action)
}

// Run invokes action until it succeeds or the attempts are used up. It
// returns nil on the first success and otherwise the error of the last
// attempt, unwrapped. There is no pause after the final attempt. When a pause
// is interrupted by ctx the last attempt's error is returned.
func (r Runner) Run(ctx context.Context, action Action) error {
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := r.MaxExtraAttempts + 1
	if attempts < 1 {
		attempts = 1
	}
	policy := r.Policy
	if policy == nil {
		policy = Immediate
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := action(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		final := attempt == attempts
		var delay time.Duration
		if !final {
			delay = policy.Delay(attempt)
		}
		if r.OnFailure != nil {
			r.OnFailure(Attempt{Number: attempt, Max: attempts, Err: err, Delay: delay, Final: final})
		}
		if final {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			break
		}
	}
	return lastErr
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
