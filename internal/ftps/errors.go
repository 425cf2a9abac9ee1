package ftps

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failed check attempt.
type Kind string

const (
	KindConnection     Kind = "connection"
	KindAuthentication Kind = "authentication"
	KindConfiguration  Kind = "configuration"
)

var (
	// ErrConnection matches failures to establish or keep the control session.
	ErrConnection = errors.New("ftps connection failure")
	// ErrAuthentication matches sessions that connected but were not authenticated.
	ErrAuthentication = errors.New("ftps authentication failure")
	// ErrConfigurationMissing matches attempts that could not start because a
	// required setting is empty or unusable.
	ErrConfigurationMissing = errors.New("ftps configuration missing")
)

// CheckError is the failure returned by Checker.Execute.
type CheckError struct {
	Kind     Kind
	Op       string
	Endpoint string
	Err      error
}

func (e *CheckError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("ftps %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ftps %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Is lets errors.Is match a CheckError against the sentinel of its kind.
func (e *CheckError) Is(target error) bool {
	switch target {
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrConfigurationMissing:
		return e.Kind == KindConfiguration
	}
	return false
}

// KindOf returns the kind of the CheckError in err's chain, or "" if none.
func KindOf(err error) Kind {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Kind
	}
	return ""
}
