// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call. A Kind is itself an error so callers can
// test with errors.Is(err, gateway.NotFound).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	// NotFound means the resource id did not resolve upstream (HTTP 404).
	NotFound Kind = "not found"

	// UpstreamUnavailable covers transport failures, timeouts, HTTP 429 and 5xx.
	UpstreamUnavailable Kind = "upstream unavailable"

	// InvalidResponse means the payload could not be decoded or violated
	// the shape a client expects.
	InvalidResponse Kind = "invalid response"

	// Unauthorized is reported for HTTP 401 and 403. Nothing acts on it yet.
	Unauthorized Kind = "unauthorized"

	// Rejected covers the remaining 4xx answers, e.g. a 400 with a detail
	// message from the server.
	Rejected Kind = "rejected"
)

// Error is the normalized failure of one gateway call.
type Error struct {
	Kind Kind

	// Op names the call, e.g. "GET /research/p1/analysis".
	Op string

	// Status is the HTTP status, or 0 when no response arrived.
	Status int

	// Detail is the server's error message, when it sent one.
	Detail string

	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + string(e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	switch {
	case e.Detail != "":
		msg += ": " + e.Detail
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a Kind target against the error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err did not come from the gateway.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Invalid builds an InvalidResponse error for shape violations a client
// detects after a successful decode.
func Invalid(op, format string, args ...any) error {
	return &Error{Kind: InvalidResponse, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// statusKind maps a non-2xx HTTP status onto a Kind.
func statusKind(status int) Kind {
	switch {
	case status == 404:
		return NotFound
	case status == 401 || status == 403:
		return Unauthorized
	case status == 429 || status >= 500:
		return UpstreamUnavailable
	default:
		return Rejected
	}
}
