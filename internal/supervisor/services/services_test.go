// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/geotrack/internal/notifier"
)

var (
	_ suture.Service = (*NotifierService)(nil)
	_ suture.Service = (*SweepSchedulerService)(nil)
	_ suture.Service = (*StoreGCService)(nil)
)

func TestNotifierService_ClosesSubscriptionsOnShutdown(t *testing.T) {
	hub := notifier.New(notifier.Config{BufferSize: 4})
	svc := NewNotifierService(hub)
	if svc.String() != "notifier" {
		t.Errorf("String() = %q", svc.String())
	}

	sub := hub.Subscribe(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription still open after notifier shutdown")
	}
	if n := hub.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", n)
	}
}

type fakeScheduler struct {
	startErr error
	stopErr  error
	starts   atomic.Int32
	stops    atomic.Int32
	started  chan struct{}
}

func (f *fakeScheduler) Start(context.Context) error {
	f.starts.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	return f.startErr
}

func (f *fakeScheduler) Stop() error {
	f.stops.Add(1)
	return f.stopErr
}

func TestSweepSchedulerService(t *testing.T) {
	t.Run("starts then stops on cancel", func(t *testing.T) {
		sched := &fakeScheduler{started: make(chan struct{}, 1)}
		svc := NewSweepSchedulerService(sched)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitSignal(t, sched.started, "Start")
		if got := sched.stops.Load(); got != 0 {
			t.Errorf("Stop called %d times before cancel", got)
		}
		cancel()

		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if got := sched.stops.Load(); got != 1 {
			t.Errorf("Stop called %d times, want 1", got)
		}
	})

	t.Run("start failure", func(t *testing.T) {
		sched := &fakeScheduler{startErr: errors.New("scheduler already running")}
		err := NewSweepSchedulerService(sched).Serve(context.Background())
		if !errors.Is(err, sched.startErr) {
			t.Errorf("Serve() = %v, want wrapped start error", err)
		}
		if got := sched.stops.Load(); got != 0 {
			t.Errorf("Stop called %d times, want 0", got)
		}
	})

	t.Run("stop failure", func(t *testing.T) {
		sched := &fakeScheduler{stopErr: errors.New("stuck")}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := NewSweepSchedulerService(sched).Serve(ctx); !errors.Is(err, sched.stopErr) {
			t.Errorf("Serve() = %v, want wrapped stop error", err)
		}
	})
}

type fakeGC struct {
	runs atomic.Int32
	err  error
}

func (f *fakeGC) RunGC() error {
	f.runs.Add(1)
	return f.err
}

func TestStoreGCService(t *testing.T) {
	t.Run("default interval", func(t *testing.T) {
		svc := NewStoreGCService(&fakeGC{}, 0)
		if svc.interval != 10*time.Minute {
			t.Errorf("interval = %v, want 10m", svc.interval)
		}
		if svc.String() != "store-gc" {
			t.Errorf("String() = %q", svc.String())
		}
	})

	tests := []struct {
		name string
		err  error
	}{
		{"successful passes", nil},
		{"failed passes keep running", errors.New("value log locked")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := &fakeGC{err: tt.err}
			svc := NewStoreGCService(gc, 5*time.Millisecond)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			deadline := time.Now().Add(time.Second)
			for gc.runs.Load() < 3 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()

			if err := <-errCh; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
			if got := gc.runs.Load(); got < 3 {
				t.Errorf("RunGC called %d times, want at least 3", got)
			}
		})
	}
}
