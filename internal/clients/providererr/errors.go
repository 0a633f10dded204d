// Package providererr classifies quote provider failures
package providererr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Failure kinds. Every kind means the provider is unavailable for this request.
var (
	ErrNetwork   = errors.New("network failure")
	ErrTimeout   = errors.New("timeout")
	ErrStatus    = errors.New("unexpected status")
	ErrMalformed = errors.New("malformed response")
)

// Error carries the provider, fund code and failure kind.
type Error struct {
	Provider string
	Code     string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Code, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Provider, e.Code, e.Kind, e.Err)
}

// Is matches the failure kind so errors.Is(err, ErrTimeout) works.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given kind.
func New(provider, code string, kind, err error) *Error {
	return &Error{Provider: provider, Code: code, Kind: kind, Err: err}
}

// Transport classifies an error returned by http.Client.Do as a timeout or a
// network failure.
func Transport(provider, code string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return New(provider, code, ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return New(provider, code, ErrTimeout, err)
	}
	return New(provider, code, ErrNetwork, err)
}

// Kind returns the failure kind of err, or nil when err is not a provider error.
func Kind(err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return nil
}
