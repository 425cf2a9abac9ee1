// Package watchrun runs one scheduled health check from start to finish.
//
// A run takes an advisory flock next to the logs so overlapping cron
// invocations skip instead of piling up, tags its log lines with a UUID
// run_id, drives ftps.Checker through retry.Runner and, once every attempt has
// failed, sends exactly one alert before handing the failure back to the CLI.
package watchrun
