package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ftpswatch/internal/logging"
	"ftpswatch/internal/watchrun"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var noAlert bool
	var maxExtraAttempts int
	var logLevel string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the FTPS server once, retrying and alerting on failure",
		Long: `Connect to the configured FTPS server over explicit TLS, log in and look
for the probe file. Failed attempts are retried up to retry.max_extra_attempts
times; when every attempt fails an alert email is sent and the command exits 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if cmd.Flags().Changed("max-extra-attempts") {
				cfg.Retry.MaxExtraAttempts = maxExtraAttempts
			}
			if level := strings.TrimSpace(logLevel); level != "" {
				cfg.Logging.Level = level
			}

			logger, closer, err := ctx.openRunLogger(&cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			opts := append([]watchrun.Option(nil), ctx.runOptions...)
			if noAlert {
				opts = append(opts, watchrun.WithoutAlert())
			}
			if ctx.configPath != "" {
				logger.Debug("configuration loaded", logging.String("path", ctx.configPath))
			}

			result, err := watchrun.Run(cmd.Context(), &cfg, logger, opts...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Outcome.FileFound {
				fmt.Fprintf(out, "OK %s (%d attempt(s), probe file present)\n", result.Outcome.Endpoint, result.Attempts)
			} else {
				fmt.Fprintf(out, "OK %s (%d attempt(s), %s)\n", result.Outcome.Endpoint, result.Attempts, result.Outcome.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noAlert, "no-alert", false, "Log failures without sending the alert email")
	cmd.Flags().IntVar(&maxExtraAttempts, "max-extra-attempts", 0, "Override retry.max_extra_attempts")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	return cmd
}
