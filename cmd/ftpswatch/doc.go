// Package main hosts the ftpswatch CLI entrypoint and command graph.
//
// "ftpswatch check" is the command cron or a systemd timer runs; it exits 0
// when the FTPS server answered and 1 after logging, alerting and flushing
// the run log otherwise. The remaining commands help operators set up and
// verify a deployment: test-alert, doctor and the config subcommands.
//
// Keep this package lean: behavior lives in internal packages and commands
// only wire configuration, logging and output.
package main
