package ftps

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/textproto"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/errors"

	"ftpswatch/internal/config"
)

// Session is one control connection to the transfer endpoint. A Session is
// created unconnected; Disconnect is safe to call in any state.
type Session interface {
	Connect(ctx context.Context) error
	Login(username, password string) error
	// Ping confirms the authenticated session still answers commands.
	Ping() error
	// FileExists reports whether the remote file exists. A negative protocol
	// answer is (false, nil); only transport failures return an error.
	FileExists(remotePath string) (bool, error)
	Disconnect() error
}

// SessionFactory creates an unconnected session for the given settings.
type SessionFactory func(cfg config.FTPS) (Session, error)

var errNotConnected = errors.New("session not connected")

// NewServerSession builds a Session backed by github.com/jlaffaye/ftp using
// explicit TLS (AUTH TLS).
func NewServerSession(cfg config.FTPS) (Session, error) {
	tlsConfig, err := TLSConfig(cfg)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &serverSession{
		addr:      net.JoinHostPort(strings.TrimSpace(cfg.Host), strconv.Itoa(cfg.Port)),
		tlsConfig: tlsConfig,
		timeout:   timeout,
	}, nil
}

// TLSConfig builds the client TLS settings for the control and data channels.
func TLSConfig(cfg config.FTPS) (*tls.Config, error) {
	serverName := strings.TrimSpace(cfg.ServerName)
	if serverName == "" {
		serverName = strings.TrimSpace(cfg.Host)
	}
	tlsConfig := &tls.Config{
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
		// Off unless the operator opts in through ftps.insecure_skip_verify.
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
		// Most FTPS servers require the data channel to resume the control
		// channel's TLS session.
		ClientSessionCache: tls.NewLRUClientSessionCache(4),
	}
	if caFile := strings.TrimSpace(cfg.CAFile); caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, errors.Wrap(err, "read ftps.ca_file")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("ftps.ca_file %s contains no PEM certificates", caFile)
		}
		tlsConfig.RootCAs = pool
	}
	return tlsConfig, nil
}

type serverSession struct {
	addr      string
	tlsConfig *tls.Config
	timeout   time.Duration
	conn      *ftp.ServerConn
}

func (s *serverSession) Connect(ctx context.Context) error {
	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(s.timeout),
	}
	if s.tlsConfig != nil {
		opts = append(opts, ftp.DialWithExplicitTLS(s.tlsConfig))
	}
	conn, err := ftp.Dial(s.addr, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *serverSession) Login(username, password string) error {
	if s.conn == nil {
		return errNotConnected
	}
	return s.conn.Login(username, password)
}

func (s *serverSession) Ping() error {
	if s.conn == nil {
		return errNotConnected
	}
	return s.conn.NoOp()
}

func (s *serverSession) FileExists(remotePath string) (bool, error) {
	if s.conn == nil {
		return false, errNotConnected
	}
	_, err := s.conn.FileSize(remotePath)
	switch {
	case err == nil, isSizeParseError(err):
		// A 213 reply means the file exists even if the size is unreadable.
		return true, nil
	case !isProtocolError(err):
		return false, err
	case protocolCode(err) == ftp.StatusFileUnavailable:
		return false, nil
	}

	// SIZE is optional; fall back to listing the parent directory.
	names, err := s.conn.NameList(path.Dir(remotePath))
	if err != nil {
		if isProtocolError(err) {
			return false, nil
		}
		return false, err
	}
	want := path.Base(remotePath)
	for _, name := range names {
		if path.Base(name) == want {
			return true, nil
		}
	}
	return false, nil
}

func (s *serverSession) Disconnect() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Quit()
	s.conn = nil
	return err
}

func isProtocolError(err error) bool {
	var protoErr *textproto.Error
	return errors.As(err, &protoErr)
}

func isSizeParseError(err error) bool {
	var numErr *strconv.NumError
	return errors.As(err, &numErr)
}

func protocolCode(err error) int {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code
	}
	return 0
}
