package config

const (
	defaultConfigPath       = "~/.config/ftpswatch/config.toml"
	defaultFTPSPort         = 21
	defaultProbePath        = "/7z2300-x64.msi"
	defaultFTPSTimeout      = 30
	defaultSMTPPort         = 25
	defaultSMTPSubject      = "FTPS health check failed"
	defaultSMTPTLSPolicy    = "opportunistic"
	defaultSMTPTimeout      = 30
	defaultMaxExtraAttempts = 3
	defaultRetryInterval    = 30
	defaultRetryPolicy      = "fixed"
	defaultRetryMaxInterval = 300
	defaultRetryJitter      = 0.2
	defaultLogDir           = "~/.local/share/ftpswatch/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		FTPS: FTPS{
			Port:           defaultFTPSPort,
			ProbePath:      defaultProbePath,
			TimeoutSeconds: defaultFTPSTimeout,
		},
		SMTP: SMTP{
			Port:           defaultSMTPPort,
			Subject:        defaultSMTPSubject,
			TLSPolicy:      defaultSMTPTLSPolicy,
			TimeoutSeconds: defaultSMTPTimeout,
		},
		Retry: Retry{
			MaxExtraAttempts:   defaultMaxExtraAttempts,
			IntervalSeconds:    defaultRetryInterval,
			Policy:             defaultRetryPolicy,
			MaxIntervalSeconds: defaultRetryMaxInterval,
			JitterFraction:     defaultRetryJitter,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			Dir:           defaultLogDir,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
