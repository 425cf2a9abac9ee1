package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ftpswatch/internal/alert"
	"ftpswatch/internal/logging"
)

func newTestAlertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-alert",
		Short: "Send a test alert email",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closer, err := ctx.openRunLogger(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			notifier := alert.NewNotifier(cfg, logger, ctx.alertOptions...)
			runCtx := logging.WithRunID(cmd.Context(), uuid.NewString())
			if err := notifier.SendTest(runCtx); err != nil {
				return fmt.Errorf("send test alert: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test alert sent to %s\n", cfg.SMTP.ToAddress)
			return nil
		},
	}
}
