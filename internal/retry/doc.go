// Package retry runs an action a bounded number of times with a pluggable
// back-off policy between failures.
//
// Runner makes at most MaxExtraAttempts+1 attempts and hands back the last
// failure exactly as the action returned it. Policies (Fixed, Exponential,
// Jittered, Immediate) only compute delays; the sleep itself is injectable so
// tests run without waiting on the wall clock.
package retry
