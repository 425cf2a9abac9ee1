// Package config loads, normalizes, and validates ftpswatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads an optional TOML file, loads a sibling .env file, and
// honours environment fallbacks such as FTPS_PASSWORD and SMTP_PASSWORD. The
// Config value is built once per process and handed to every component
// explicitly; nothing in the repository reads configuration from globals.
//
// A missing file is not an error. Empty endpoint or mail settings load fine
// and surface later as check or alert failures; Missing lists them for the
// doctor and config validate commands.
package config
