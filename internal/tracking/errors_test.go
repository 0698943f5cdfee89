// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package tracking

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	cause := errors.New("boom")
	err := newError(KindLookupFailed, "getUser", "error getting user", cause)

	if !errors.Is(err, ErrLookupFailed) {
		t.Error("errors.Is(err, ErrLookupFailed) = false")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = true")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if KindOf(wrapped) != KindLookupFailed {
		t.Errorf("KindOf(wrapped) = %v", KindOf(wrapped))
	}
	if KindOf(cause) != 0 {
		t.Errorf("KindOf(plain) = %v, want 0", KindOf(cause))
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op and message", newError(KindNotFound, "getUser", "user not found", nil), "getUser: user not found"},
		{"kind fallback", &Error{Kind: KindDeleteFailed}, "delete_failed"},
		{"formatted", invalidArgument("getUser", "invalid user id %q", "x"), `getUser: invalid user id "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindInvalidArgument:   "invalid_argument",
		KindNotFound:          "not_found",
		KindDuplicateUsername: "duplicate_username",
		KindLookupFailed:      "lookup_failed",
		KindCreateFailed:      "create_failed",
		KindUpdateFailed:      "update_failed",
		KindDeleteFailed:      "delete_failed",
		Kind(99):              "unknown",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
