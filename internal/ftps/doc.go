// Package ftps checks that an FTPS endpoint accepts an explicit-TLS session
// and the configured credentials.
//
// Checker.Execute runs one attempt: connect, login, a NOOP round trip and a
// lookup of the probe file. Failures come back as *CheckError values that
// match ErrConnection, ErrAuthentication or ErrConfigurationMissing through
// errors.Is and carry a pkg/errors stack for the alert body. A missing probe
// file is not a failure; the Outcome reports it instead.
//
// The protocol work sits behind the Session interface so tests can drive the
// checker without a server.
package ftps
