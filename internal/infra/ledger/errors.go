package ledger

import (
	"errors"
	"fmt"
)

// ErrorKind separates reachability failures from remote-reported ones.
type ErrorKind int

const (
	// KindTransport: the service could not be reached or timed out.
	KindTransport ErrorKind = iota
	// KindApplication: the service processed the request and declined it.
	KindApplication
)

// Error is the failure type returned by every Service call.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Kind == KindTransport {
		return fmt.Sprintf("ledger transport error: %s", e.Message)
	}
	return fmt.Sprintf("ledger rejected request (http %d): %s", e.Status, e.Message)
}

// IsTransport reports whether err is a transport-kind ledger error.
func IsTransport(err error) bool {
	var lerr *Error
	return errors.As(err, &lerr) && lerr.Kind == KindTransport
}

// Message extracts the remote message from err, or err.Error() otherwise.
func Message(err error) string {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Message
	}
	return err.Error()
}
