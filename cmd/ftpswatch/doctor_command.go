package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ftpswatch/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check local readiness without logging in or sending mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Network: !offline})

			out := cmd.OutOrStdout()
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			}
			fmt.Fprintln(out, renderResults(results, shouldColorize(out)))
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip TCP reachability checks")
	return cmd
}
