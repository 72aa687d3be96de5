// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/api/googleapi"
)

// Kind classifies failures of this subsystem so callers can decide whether
// to re-authorize, retry, or roll back.
type Kind string

const (
	// KindNotConnected means no credential exists (or the provider no
	// longer accepts it). Never retried automatically; resolved only by
	// re-running the authorization flow.
	KindNotConnected Kind = "not_connected"

	// KindAuthorizationIncomplete means the OAuth callback lacked a usable
	// code, access/identity token, or resolvable email. Terminal for that
	// attempt; the user must restart the flow.
	KindAuthorizationIncomplete Kind = "authorization_incomplete"

	// KindTransientProvider is a network failure, timeout, or server error
	// from the provider. Safe to retry with backoff.
	KindTransientProvider Kind = "transient_provider_error"

	// KindMutationRejected means the provider rejected a write. Not
	// retried; triggers rollback of optimistic local state.
	KindMutationRejected Kind = "mutation_rejected"
)

// Error is a classified subsystem failure.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

// NewError creates a classified error wrapping cause (which may be nil).
func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, msg: msg, err: cause}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the classification from err, or "" if err is not a
// classified Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// classify maps a raw provider error into the taxonomy. write selects
// mutation semantics: client-side 4xx responses on writes are rejections
// to roll back, while on reads they degrade like any other provider fault.
func classify(err error, write bool) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTransientProvider, "provider call timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(KindTransientProvider, "provider call timed out", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return NewError(KindNotConnected, "provider rejected the credential", err)
		case apiErr.Code == 408 || apiErr.Code == 429 || apiErr.Code >= 500:
			return NewError(KindTransientProvider, "provider unavailable", err)
		case write && apiErr.Code >= 400:
			return NewError(KindMutationRejected, "provider rejected the write", err)
		}
	}

	return NewError(KindTransientProvider, "provider call failed", err)
}
