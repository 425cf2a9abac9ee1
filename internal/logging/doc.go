// Package logging assembles the structured slog loggers used by ftpswatch.
//
// It owns the console and JSON handlers, level and output plumbing, per-run
// log files with a stable ftpswatch.log pointer, and retention pruning of old
// run files. Loggers carry standardized keys (component, run_id, event_type,
// error_hint, impact) so a failed scheduled run can be traced from the alert
// email back to its log lines.
//
// New returns an io.Closer alongside the logger; callers close it on exit so
// file output is synced before the process terminates.
package logging
