package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"ftpswatch/internal/config"
)

const dialTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadableFile verifies that a regular file exists and can be read.
func CheckReadableFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckSettings reports required settings that are still empty.
func CheckSettings(cfg *config.Config) Result {
	const name = "Required settings"
	missing := cfg.Missing()
	if len(missing) > 0 {
		return Result{Name: name, Detail: "missing " + strings.Join(missing, ", ")}
	}
	if cfg.FTPS.InsecureSkipVerify {
		return Result{Name: name, Passed: true, Detail: "complete (warning: ftps.insecure_skip_verify is on)"}
	}
	return Result{Name: name, Passed: true, Detail: "complete"}
}

// CheckReachable opens and closes a TCP connection to host:port. It does not
// speak the protocol; a pass only means something is listening.
func CheckReachable(ctx context.Context, name, host string, port int) Result {
	host = strings.TrimSpace(host)
	if host == "" {
		return Result{Name: name, Detail: "missing host"}
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	checkCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(checkCtx, "tcp", addr)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", addr, summarizeDialError(err))}
	}
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", addr)}
}

// summarizeDialError produces a human-readable summary for dial failures.
func summarizeDialError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "host not found"
	}
	if errors.Is(err, unix.ECONNREFUSED) {
		return "connection refused"
	}
	return err.Error()
}
