package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"golang.org/x/text/unicode/norm"

	"ftpswatch/internal/config"
	"ftpswatch/internal/logging"
)

const mailer = "ftpswatch"

// ErrMailSend marks a failed hand-off to the mail server.
var ErrMailSend = errors.New("alert mail send failed")

// Transport delivers one prepared message.
type Transport interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, msg *mail.Msg) error

func (f TransportFunc) Send(ctx context.Context, msg *mail.Msg) error { return f(ctx, msg) }

// Notifier composes and synchronously sends failure alerts.
type Notifier struct {
	cfg       config.SMTP
	endpoint  string
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithTransport replaces SMTP delivery.
func WithTransport(transport Transport) Option {
	return func(n *Notifier) {
		if transport != nil {
			n.transport = transport
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNotifier builds a notifier for the configured sender and recipient.
func NewNotifier(cfg *config.Config, logger *slog.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		cfg:       cfg.SMTP,
		endpoint:  cfg.Endpoint(),
		transport: smtpTransport{cfg: cfg.SMTP},
		logger:    logging.NewComponentLogger(logger, "alert"),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Send composes the alert for cause and delivers it. Delivery errors are
// returned, never swallowed.
func (n *Notifier) Send(ctx context.Context, cause error) error {
	runID, _ := logging.RunIDFromContext(ctx)
	message, err := Compose(n.subject(), n.endpoint, runID, cause, n.now())
	if err != nil {
		return err
	}
	return n.deliver(ctx, message)
}

// SendTest delivers an alert with a synthetic cause so operators can confirm
// the mail path.
func (n *Notifier) SendTest(ctx context.Context) error {
	runID, _ := logging.RunIDFromContext(ctx)
	cause := fmt.Errorf("test alert: %w", errTest)
	message, err := Compose("[test] "+n.subject(), n.endpoint, runID, cause, n.now())
	if err != nil {
		return err
	}
	return n.deliver(ctx, message)
}

var errTest = errors.New("synthetic failure requested by ftpswatch test-alert")

func (n *Notifier) subject() string {
	if subject := strings.TrimSpace(n.cfg.Subject); subject != "" {
		return subject
	}
	return "FTPS health check failed"
}

func (n *Notifier) deliver(ctx context.Context, message Message) error {
	msg, err := n.build(message)
	if err != nil {
		return err
	}
	if err := n.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrMailSend, err)
	}
	logging.WarnWithContext(logging.WithContext(ctx, n.logger), "email alert sent",
		"alert_sent",
		logging.String("to", n.cfg.ToAddress),
		logging.String("subject", message.Subject),
		logging.String(logging.FieldEndpoint, n.endpoint),
		logging.String(logging.FieldErrorHint, "investigate the FTPS endpoint"),
		logging.String(logging.FieldImpact, "operators notified of failed health check"),
	)
	return nil
}

// build turns a composed message into a MIME message: HTML, UTF-8, high
// importance.
func (n *Notifier) build(message Message) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8))
	if err := msg.FromFormat(displayName(n.cfg.FromDisplayName), n.cfg.FromAddress); err != nil {
		return nil, fmt.Errorf("alert sender %q: %w", n.cfg.FromAddress, err)
	}
	if err := msg.AddToFormat(displayName(n.cfg.ToDisplayName), n.cfg.ToAddress); err != nil {
		return nil, fmt.Errorf("alert recipient %q: %w", n.cfg.ToAddress, err)
	}
	msg.Subject(norm.NFC.String(message.Subject))
	msg.SetDateWithValue(message.Timestamp)
	msg.SetImportance(mail.ImportanceHigh)
	msg.SetGenHeader(mail.HeaderXMailer, mailer)
	if message.RunID != "" {
		msg.SetGenHeader(mail.Header("X-Ftpswatch-Run-Id"), message.RunID)
	}
	msg.SetBodyString(mail.TypeTextHTML, message.HTML)
	return msg, nil
}

// displayName returns name in NFC so the encoded-word header carries
// precomposed characters.
func displayName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// smtpTransport dials the configured server for every message.
type smtpTransport struct {
	cfg config.SMTP
}

func (t smtpTransport) Send(ctx context.Context, msg *mail.Msg) error {
	client, err := NewSMTPClient(t.cfg)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// NewSMTPClient builds a go-mail client from the smtp section. SMTP AUTH is
// only configured when a username is set.
func NewSMTPClient(cfg config.SMTP) (*mail.Client, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errors.New("smtp.host is not set")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
		mail.WithTimeout(timeout),
	}
	if strings.TrimSpace(cfg.Username) != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return client, nil
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}
