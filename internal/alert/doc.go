// Package alert composes and sends the failure email raised after the FTPS
// check has used up its retries.
//
// Compose renders the HTML body with html/template so error text and stack
// traces are escaped. Notifier builds the MIME message with go-mail (UTF-8,
// text/html, high importance) and hands it to a Transport; the default
// transport dials the configured SMTP server for each message. Send errors
// are returned to the caller and wrap ErrMailSend.
package alert
