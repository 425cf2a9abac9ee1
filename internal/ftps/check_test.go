package ftps_test

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ftpswatch/internal/config"
	"ftpswatch/internal/ftps"
	"ftpswatch/internal/logging"
	"ftpswatch/internal/testsupport"
)

type fakeSession struct {
	connectErr    error
	loginErr      error
	pingErr       error
	existsErr     error
	exists        bool
	disconnectErr error

	connects    int
	logins      int
	disconnects int
	probed      string
	user, pass  string
}

func (f *fakeSession) Connect(context.Context) error {
	f.connects++
	return f.connectErr
}

func (f *fakeSession) Login(username, password string) error {
	f.logins++
	f.user, f.pass = username, password
	return f.loginErr
}

func (f *fakeSession) Ping() error { return f.pingErr }

func (f *fakeSession) FileExists(remotePath string) (bool, error) {
	f.probed = remotePath
	return f.exists, f.existsErr
}

func (f *fakeSession) Disconnect() error {
	f.disconnects++
	return f.disconnectErr
}

func newChecker(t *testing.T, session *fakeSession, opts ...testsupport.ConfigOption) *ftps.Checker {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	return ftps.NewChecker(cfg, logging.NewNop(), ftps.WithSessionFactory(func(config.FTPS) (ftps.Session, error) {
		return session, nil
	}))
}

func TestExecuteFindsProbeFile(t *testing.T) {
	session := &fakeSession{exists: true}
	outcome, err := newChecker(t, session).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !outcome.FileFound || outcome.Reason != "" {
		t.Fatalf("expected file found without reason, got %+v", outcome)
	}
	if outcome.Endpoint != "ftp.example.com:21" {
		t.Fatalf("unexpected endpoint %q", outcome.Endpoint)
	}
	if session.probed != "/7z2300-x64.msi" {
		t.Fatalf("expected default probe path, got %q", session.probed)
	}
	if session.user != "monitor" || session.pass != "secret" {
		t.Fatalf("expected configured credentials, got %q/%q", session.user, session.pass)
	}
	if session.connects != 1 || session.disconnects != 1 {
		t.Fatalf("expected one connect and one disconnect, got %d/%d", session.connects, session.disconnects)
	}
}

func TestExecuteMissingProbeFileIsNotAnError(t *testing.T) {
	session := &fakeSession{exists: false}
	outcome, err := newChecker(t, session).Execute(context.Background())
	if err != nil {
		t.Fatalf("missing probe file should not fail the attempt: %v", err)
	}
	if outcome.FileFound {
		t.Fatal("expected FileFound=false")
	}
	if !strings.Contains(outcome.Reason, "/7z2300-x64.msi") {
		t.Fatalf("expected reason to name the probe path, got %q", outcome.Reason)
	}
	if session.disconnects != 1 {
		t.Fatalf("expected one disconnect, got %d", session.disconnects)
	}
}

func TestExecuteClassifiesFailures(t *testing.T) {
	cause := errors.New("server said no")
	tests := []struct {
		name         string
		session      *fakeSession
		sentinel     error
		kind         ftps.Kind
		wantLogins   int
		wantConnects int
	}{
		{
			name:         "connect refused",
			session:      &fakeSession{connectErr: cause},
			sentinel:     ftps.ErrConnection,
			kind:         ftps.KindConnection,
			wantConnects: 1,
		},
		{
			name:         "bad credentials",
			session:      &fakeSession{loginErr: cause},
			sentinel:     ftps.ErrAuthentication,
			kind:         ftps.KindAuthentication,
			wantConnects: 1,
			wantLogins:   1,
		},
		{
			name:         "noop fails",
			session:      &fakeSession{pingErr: cause},
			sentinel:     ftps.ErrConnection,
			kind:         ftps.KindConnection,
			wantConnects: 1,
			wantLogins:   1,
		},
		{
			name:         "probe transport failure",
			session:      &fakeSession{existsErr: cause},
			sentinel:     ftps.ErrConnection,
			kind:         ftps.KindConnection,
			wantConnects: 1,
			wantLogins:   1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newChecker(t, tc.session).Execute(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			if !errors.Is(err, cause) {
				t.Fatalf("expected underlying cause in chain, got %v", err)
			}
			if got := ftps.KindOf(err); got != tc.kind {
				t.Fatalf("expected kind %q, got %q", tc.kind, got)
			}
			if tc.session.connects != tc.wantConnects || tc.session.logins != tc.wantLogins {
				t.Fatalf("unexpected call counts: connects=%d logins=%d", tc.session.connects, tc.session.logins)
			}
			if tc.session.disconnects != 1 {
				t.Fatalf("expected exactly one disconnect, got %d", tc.session.disconnects)
			}
		})
	}
}

func TestExecuteAuthenticationFailureIsNotConnectionFailure(t *testing.T) {
	_, err := newChecker(t, &fakeSession{loginErr: errors.New("530 Login incorrect")}).Execute(context.Background())
	if errors.Is(err, ftps.ErrConnection) {
		t.Fatalf("authentication failure must not match ErrConnection: %v", err)
	}
}

func TestExecuteDisconnectFailureDoesNotMaskResult(t *testing.T) {
	session := &fakeSession{exists: true, disconnectErr: errors.New("quit timed out")}
	outcome, err := newChecker(t, session).Execute(context.Background())
	if err != nil {
		t.Fatalf("disconnect failure should be ignored, got %v", err)
	}
	if !outcome.FileFound {
		t.Fatal("expected success outcome")
	}

	loginErr := errors.New("530")
	session = &fakeSession{loginErr: loginErr, disconnectErr: errors.New("quit timed out")}
	_, err = newChecker(t, session).Execute(context.Background())
	if !errors.Is(err, loginErr) {
		t.Fatalf("expected login error to survive disconnect failure, got %v", err)
	}
}

func TestExecuteWithoutHostIsConfigurationError(t *testing.T) {
	session := &fakeSession{}
	_, err := newChecker(t, session, testsupport.WithFTPSHost("")).Execute(context.Background())
	if !errors.Is(err, ftps.ErrConfigurationMissing) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if session.connects != 0 || session.disconnects != 0 {
		t.Fatalf("expected no session activity, got connects=%d disconnects=%d", session.connects, session.disconnects)
	}
}

func TestExecuteSessionFactoryFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	checker := ftps.NewChecker(cfg, logging.NewNop(), ftps.WithSessionFactory(func(config.FTPS) (ftps.Session, error) {
		return nil, errors.New("bad ca file")
	}))
	_, err := checker.Execute(context.Background())
	if ftps.KindOf(err) != ftps.KindConfiguration {
		t.Fatalf("expected configuration kind, got %v", err)
	}
}

func TestCheckErrorCarriesStack(t *testing.T) {
	_, err := newChecker(t, &fakeSession{connectErr: errors.New("refused")}).Execute(context.Background())
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "check.go") {
		t.Fatalf("expected stack trace in %%+v output, got %q", formatted)
	}
	if !strings.HasPrefix(err.Error(), "ftps connect ftp.example.com:21") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTLSConfigDefaults(t *testing.T) {
	cfg := config.FTPS{Host: "ftp.example.com"}
	tlsConfig, err := ftps.TLSConfig(cfg)
	if err != nil {
		t.Fatalf("TLSConfig: %v", err)
	}
	if tlsConfig.InsecureSkipVerify {
		t.Fatal("certificate verification must be on by default")
	}
	if tlsConfig.ServerName != "ftp.example.com" {
		t.Fatalf("expected server name from host, got %q", tlsConfig.ServerName)
	}
	if tlsConfig.MinVersion != tls.VersionTLS12 {
		t.Fatalf("expected TLS 1.2 minimum, got %x", tlsConfig.MinVersion)
	}
	if tlsConfig.ClientSessionCache == nil {
		t.Fatal("expected a session cache for data channel resumption")
	}
}

func TestTLSConfigCustomCA(t *testing.T) {
	dir := t.TempDir()
	caPath := testsupport.WriteCACertificate(t, dir)
	tlsConfig, err := ftps.TLSConfig(config.FTPS{Host: "10.0.0.5", ServerName: "ftp.internal", CAFile: caPath})
	if err != nil {
		t.Fatalf("TLSConfig: %v", err)
	}
	if tlsConfig.RootCAs == nil {
		t.Fatal("expected custom root pool")
	}
	if tlsConfig.ServerName != "ftp.internal" {
		t.Fatalf("expected server_name override, got %q", tlsConfig.ServerName)
	}

	bogus := filepath.Join(dir, "bogus.pem")
	testsupport.WriteFile(t, bogus, "not a certificate")
	if _, err := ftps.TLSConfig(config.FTPS{Host: "x", CAFile: bogus}); err == nil {
		t.Fatal("expected error for PEM without certificates")
	}
}

func TestExecuteMeasuresAttemptDuration(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 1500 * time.Millisecond)
	}
	cfg := testsupport.NewConfig(t)
	checker := ftps.NewChecker(cfg, logging.NewNop(),
		ftps.WithClock(clock),
		ftps.WithSessionFactory(func(config.FTPS) (ftps.Session, error) {
			return &fakeSession{exists: true}, nil
		}))

	outcome, err := checker.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if outcome.Duration != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s attempt duration, got %s", outcome.Duration)
	}
}

func TestExecuteLogsDisconnectAtInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "check.log")
	logger, closer, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	cfg := testsupport.NewConfig(t)
	checker := ftps.NewChecker(cfg, logger, ftps.WithSessionFactory(func(config.FTPS) (ftps.Session, error) {
		return &fakeSession{exists: true}, nil
	}))
	if _, err := checker.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "INFO ftps: ftps disconnected") {
		t.Fatalf("expected disconnect logged at info, got %q", content)
	}
}
