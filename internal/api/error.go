package api

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure so callers can react without parsing
// status codes or message text.
type Kind string

const (
	KindValidation Kind = "validation" // payload rejected, locally or by the server
	KindNotFound   Kind = "not-found"
	KindConflict   Kind = "conflict" // illegal transition, stock constraint, etc.
	KindServer     Kind = "server"
	KindNetwork    Kind = "network"
)

// Error is the typed failure of one gateway operation.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for local/network failures
	Message string // server-supplied explanation where available
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf classifies err, returning "" when err is not a gateway failure.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsKind reports whether err is a gateway failure of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func kindForStatus(status int) Kind {
	switch {
	case status == 400 || status == 422:
		return KindValidation
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	default:
		return KindServer
	}
}
