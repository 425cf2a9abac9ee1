package preflight

import (
	"context"
	"strings"

	"ftpswatch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects optional checks.
type Options struct {
	// Network enables TCP reachability checks for the FTPS and SMTP servers.
	Network bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckSettings(cfg),
		CheckDirectoryAccess("Log directory", cfg.Logging.Dir),
	}

	if caFile := strings.TrimSpace(cfg.FTPS.CAFile); caFile != "" {
		results = append(results, CheckReadableFile("FTPS CA bundle", caFile))
	}

	if opts.Network {
		results = append(results,
			CheckReachable(ctx, "FTPS server", cfg.FTPS.Host, cfg.FTPS.Port),
			CheckReachable(ctx, "SMTP server", cfg.SMTP.Host, cfg.SMTP.Port),
		)
	}

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
