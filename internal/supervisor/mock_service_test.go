// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// stubService is a controllable suture.Service for tree tests.
type stubService struct {
	name     string
	starts   atomic.Int32
	failures atomic.Int32
	failFor  int32 // Serve fails this many times before running normally
	started  chan struct{}
}

func newStubService(name string) *stubService {
	return &stubService{name: name, started: make(chan struct{}, 16)}
}

func (s *stubService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	select {
	case s.started <- struct{}{}:
	default:
	}

	if s.failures.Add(1) <= s.failFor {
		return errors.New("simulated failure")
	}

	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string {
	return s.name
}

// waitStarts polls until the service has started at least n times.
func (s *stubService) waitStarts(n int32, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.starts.Load() >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return s.starts.Load() >= n
}
