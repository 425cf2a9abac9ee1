package retry

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Policy decides how long to wait before the next attempt. failures is the
// number of failed attempts so far (1 after the first failure).
type Policy interface {
	Delay(failures int) time.Duration
}

// Fixed waits the same interval between every attempt.
type Fixed struct {
	Interval time.Duration
}

func (p Fixed) Delay(int) time.Duration {
	if p.Interval < 0 {
		return 0
	}
	return p.Interval
}

// Immediate retries without waiting.
var Immediate Policy = Fixed{}

// Exponential multiplies Base by Multiplier after every failure, capped at Max.
type Exponential struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64
}

func (p Exponential) Delay(failures int) time.Duration {
	if p.Base <= 0 {
		return 0
	}
	if failures <= 0 {
		failures = 1
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}

	// failure 1 -> base, failure 2 -> base*m, failure 3 -> base*m^2, ...
	delay := float64(p.Base)
	for i := 1; i < failures; i++ {
		delay *= multiplier
		if p.Max > 0 && delay >= float64(p.Max) {
			return p.Max
		}
	}
	if p.Max > 0 && delay > float64(p.Max) {
		return p.Max
	}
	return time.Duration(delay)
}

// Jittered spreads the delay of Base by up to ±Fraction.
type Jittered struct {
	Base     Policy
	Fraction float64
	// Rand returns a value in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

func (p Jittered) Delay(failures int) time.Duration {
	if p.Base == nil {
		return 0
	}
	delay := p.Base.Delay(failures)
	if delay <= 0 || p.Fraction <= 0 {
		return delay
	}
	fraction := p.Fraction
	if fraction > 1 {
		fraction = 1
	}
	random := p.Rand
	if random == nil {
		random = rand.Float64
	}
	scale := 1 - fraction + 2*fraction*random()
	return time.Duration(float64(delay) * scale)
}

// PolicyFromName builds the policy named in configuration.
func PolicyFromName(name string, interval, maxInterval time.Duration, jitter float64) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fixed":
		return Fixed{Interval: interval}, nil
	case "immediate":
		return Immediate, nil
	case "exponential":
		return Exponential{Base: interval, Max: maxInterval, Multiplier: 2}, nil
	case "jittered":
		return Jittered{Base: Fixed{Interval: interval}, Fraction: jitter}, nil
	default:
		return nil, fmt.Errorf("retry policy: unsupported value %q", name)
	}
}
