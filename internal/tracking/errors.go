// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package tracking

import (
	"errors"
	"fmt"
)

// Kind classifies tracking errors for callers.
type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindNotFound
	KindDuplicateUsername
	KindLookupFailed
	KindCreateFailed
	KindUpdateFailed
	KindDeleteFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindDuplicateUsername:
		return "duplicate_username"
	case KindLookupFailed:
		return "lookup_failed"
	case KindCreateFailed:
		return "create_failed"
	case KindUpdateFailed:
		return "update_failed"
	case KindDeleteFailed:
		return "delete_failed"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrDuplicateUsername = &Error{Kind: KindDuplicateUsername}
	ErrLookupFailed      = &Error{Kind: KindLookupFailed}
	ErrCreateFailed      = &Error{Kind: KindCreateFailed}
	ErrUpdateFailed      = &Error{Kind: KindUpdateFailed}
	ErrDeleteFailed      = &Error{Kind: KindDeleteFailed}
)

// Error is returned by every Service operation that can fail.
//
// Message is safe to show to callers. For store-layer kinds it is generic;
// the underlying cause stays reachable through Unwrap and is logged by the
// service.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of err, or 0 when err is not a tracking error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Err: cause}
}

func invalidArgument(op, format string, args ...any) *Error {
	return newError(KindInvalidArgument, op, fmt.Sprintf(format, args...), nil)
}
