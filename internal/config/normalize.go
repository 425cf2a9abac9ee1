package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeFTPS(); err != nil {
		return err
	}
	c.normalizeSMTP()
	c.normalizeRetry()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeFTPS() error {
	c.FTPS.Host = envFallback(c.FTPS.Host, "FTPS_HOST")
	c.FTPS.Username = envFallback(c.FTPS.Username, "FTPS_USERNAME")
	c.FTPS.Password = envFallback(c.FTPS.Password, "FTPS_PASSWORD")
	c.FTPS.ServerName = strings.TrimSpace(c.FTPS.ServerName)
	if c.FTPS.Port <= 0 {
		c.FTPS.Port = defaultFTPSPort
	}
	c.FTPS.ProbePath = strings.TrimSpace(c.FTPS.ProbePath)
	if c.FTPS.ProbePath == "" {
		c.FTPS.ProbePath = defaultProbePath
	}
	if !strings.HasPrefix(c.FTPS.ProbePath, "/") {
		c.FTPS.ProbePath = "/" + c.FTPS.ProbePath
	}
	if c.FTPS.TimeoutSeconds <= 0 {
		c.FTPS.TimeoutSeconds = defaultFTPSTimeout
	}
	if strings.TrimSpace(c.FTPS.CAFile) != "" {
		var err error
		if c.FTPS.CAFile, err = expandPath(strings.TrimSpace(c.FTPS.CAFile)); err != nil {
			return fmt.Errorf("ftps.ca_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeSMTP() {
	c.SMTP.Host = envFallback(c.SMTP.Host, "SMTP_HOST")
	c.SMTP.Username = envFallback(c.SMTP.Username, "SMTP_USERNAME")
	c.SMTP.Password = envFallback(c.SMTP.Password, "SMTP_PASSWORD")
	c.SMTP.FromAddress = strings.TrimSpace(c.SMTP.FromAddress)
	c.SMTP.ToAddress = strings.TrimSpace(c.SMTP.ToAddress)
	c.SMTP.FromDisplayName = strings.TrimSpace(c.SMTP.FromDisplayName)
	c.SMTP.ToDisplayName = strings.TrimSpace(c.SMTP.ToDisplayName)
	if c.SMTP.Port <= 0 {
		c.SMTP.Port = defaultSMTPPort
	}
	if strings.TrimSpace(c.SMTP.Subject) == "" {
		c.SMTP.Subject = defaultSMTPSubject
	}
	c.SMTP.TLSPolicy = strings.ToLower(strings.TrimSpace(c.SMTP.TLSPolicy))
	if c.SMTP.TLSPolicy == "" {
		c.SMTP.TLSPolicy = defaultSMTPTLSPolicy
	}
	if c.SMTP.TimeoutSeconds <= 0 {
		c.SMTP.TimeoutSeconds = defaultSMTPTimeout
	}
}

func (c *Config) normalizeRetry() {
	c.Retry.Policy = strings.ToLower(strings.TrimSpace(c.Retry.Policy))
	if c.Retry.Policy == "" {
		c.Retry.Policy = defaultRetryPolicy
	}
	if c.Retry.MaxIntervalSeconds <= 0 {
		c.Retry.MaxIntervalSeconds = defaultRetryMaxInterval
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("FTPSWATCH_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}
	var err error
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}
