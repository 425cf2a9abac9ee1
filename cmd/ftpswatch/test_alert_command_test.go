package main

import (
	"context"
	"errors"
	"testing"

	"github.com/wneessen/go-mail"

	"ftpswatch/internal/alert"
)

func TestTestAlertCommandSends(t *testing.T) {
	env := setupCLITestEnv(t)
	var sent []*mail.Msg
	transport := alert.TransportFunc(func(_ context.Context, msg *mail.Msg) error {
		sent = append(sent, msg)
		return nil
	})

	out, _, err := runCLI(t, []string{"test-alert"}, env.configPath, withAlertOptions(alert.WithTransport(transport)))
	if err != nil {
		t.Fatalf("test-alert: %v", err)
	}
	requireContains(t, out, "Test alert sent to ops@example.com")
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
}

func TestTestAlertCommandPropagatesFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	transport := alert.TransportFunc(func(context.Context, *mail.Msg) error {
		return errors.New("connection refused")
	})
	_, _, err := runCLI(t, []string{"test-alert"}, env.configPath, withAlertOptions(alert.WithTransport(transport)))
	if !errors.Is(err, alert.ErrMailSend) {
		t.Fatalf("expected mail send failure, got %v", err)
	}
}
