package remote

import (
	"errors"
	"fmt"
)

// FailureKind categorizes a gateway call failure. The repository and the
// sync coordinator branch on the category, never on error strings.
type FailureKind int

const (
	// FailureTransport covers timeouts, DNS and TLS errors, refused
	// connections: anything where no HTTP response arrived.
	FailureTransport FailureKind = iota
	// FailureHTTP is a non-2xx response without a decodable envelope.
	FailureHTTP
	// FailureApp is a decoded envelope with success=false.
	FailureApp
	// FailureAuth is a missing, expired or rejected token.
	FailureAuth
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureHTTP:
		return "http"
	case FailureApp:
		return "application"
	case FailureAuth:
		return "auth"
	}
	return "unknown"
}

type Error struct {
	Kind       FailureKind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s failure: %s (status %d)", e.Op, e.Kind, e.Message, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure category of err, or FailureTransport if err
// is not a gateway error.
func KindOf(err error) FailureKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return FailureTransport
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return KindOf(err) == FailureAuth
}
