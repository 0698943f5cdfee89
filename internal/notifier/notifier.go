// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

// Package notifier fans out updated TrackedUser records to live subscribers.
//
// A Notifier is an in-process publish/subscribe point. Publish hands a record
// to every subscription attached at that moment, in subscription order,
// without ever blocking on a slow reader: when a subscriber's buffer is full
// the record is dropped for that subscriber only. There is no replay; a new
// subscription sees only records published after it was created.
//
//	n := notifier.New(notifier.Config{BufferSize: 64})
//	sub := n.Subscribe(ctx)
//	defer sub.Close()
//	for user := range sub.C() {
//	    ...
//	}
package notifier

import (
	"context"
	"slices"
	"sync"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/metrics"
	"github.com/tomtom215/geotrack/internal/models"
)

// DefaultBufferSize is the per-subscriber buffer used when Config leaves it unset.
const DefaultBufferSize = 256

// ShutdownReason identifies why the notifier stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Config configures a Notifier.
type Config struct {
	// BufferSize is the number of undelivered records a subscriber may
	// hold before further records are dropped for it.
	BufferSize int
}

// Notifier is the locationAdded fan-out point.
type Notifier struct {
	mu         sync.RWMutex
	subs       []*Subscription // ascending id
	nextID     uint64
	bufferSize int
	closed     bool
}

// New creates a Notifier.
func New(cfg Config) *Notifier {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &Notifier{bufferSize: cfg.BufferSize}
}

// Subscription is one live stream of published records.
//
// The channel returned by C is closed when the subscription detaches, which
// happens on Close, on cancellation of the context passed to Subscribe, or
// when the notifier shuts down.
type Subscription struct {
	id   uint64
	ch   chan models.TrackedUser
	n    *Notifier
	done chan struct{}

	closed   bool // guarded by n.mu
	doneOnce sync.Once
}

// ID returns the subscription's dispatch position.
func (s *Subscription) ID() uint64 {
	return s.id
}

// C returns the receive side of the stream.
func (s *Subscription) C() <-chan models.TrackedUser {
	return s.ch
}

// Done is closed once the subscription has detached.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close detaches the subscription. Safe to call more than once and from
// any goroutine.
func (s *Subscription) Close() {
	if s.n != nil {
		s.n.detach(s)
	}
	s.markDone()
}

func (s *Subscription) markDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Subscribe attaches a new subscription. It detaches automatically when ctx
// is done. After the notifier has shut down the returned subscription is
// already closed.
func (n *Notifier) Subscribe(ctx context.Context) *Subscription {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		sub := &Subscription{ch: make(chan models.TrackedUser), done: make(chan struct{}), closed: true}
		close(sub.ch)
		sub.markDone()
		return sub
	}

	n.nextID++
	sub := &Subscription{
		id:   n.nextID,
		ch:   make(chan models.TrackedUser, n.bufferSize),
		n:    n,
		done: make(chan struct{}),
	}
	n.subs = append(n.subs, sub)
	count := len(n.subs)
	n.mu.Unlock()

	metrics.NotifierSubscribers.Set(float64(count))
	logging.Debug().Uint64("subscription_id", sub.id).Int("subscribers", count).Msg("Subscriber attached")

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Close()
			case <-sub.done:
			}
		}()
	}
	return sub
}

// detach removes s and closes its channel if it is still attached.
func (n *Notifier) detach(s *Subscription) {
	n.mu.Lock()
	if s.closed {
		n.mu.Unlock()
		return
	}
	s.closed = true
	if idx := slices.Index(n.subs, s); idx >= 0 {
		n.subs = slices.Delete(n.subs, idx, idx+1)
	}
	close(s.ch)
	count := len(n.subs)
	n.mu.Unlock()

	metrics.NotifierSubscribers.Set(float64(count))
	logging.Debug().Uint64("subscription_id", s.id).Int("subscribers", count).Msg("Subscriber detached")
}

// Publish delivers user to every subscription attached right now, in
// ascending subscription id. It never blocks.
func (n *Notifier) Publish(user models.TrackedUser) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return
	}
	metrics.NotifierPublished.Inc()

	for _, sub := range n.subs {
		select {
		case sub.ch <- user:
			metrics.NotifierDelivered.Inc()
		default:
			metrics.NotifierDropped.Inc()
			logging.Warn().
				Uint64("subscription_id", sub.id).
				Str("user_id", user.ID).
				Msg("Subscriber buffer full, dropping locationAdded message")
		}
	}
}

// SubscriberCount returns the number of attached subscriptions.
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// RunWithContext blocks until ctx is done, then closes every subscription.
// Later Subscribe calls return closed subscriptions and Publish becomes a
// no-op. It is meant to run under the supervisor tree.
func (n *Notifier) RunWithContext(ctx context.Context) error {
	<-ctx.Done()

	closed := n.shutdown()
	logging.Info().
		Str("component", "notifier").
		Str("reason", string(shutdownReason(ctx))).
		Int("subscriptions_closed", closed).
		Msg("Notifier stopped")
	return ctx.Err()
}

// shutdown closes all subscriptions in id order and returns how many there were.
func (n *Notifier) shutdown() int {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return 0
	}
	n.closed = true
	subs := n.subs
	n.subs = nil
	for _, sub := range subs {
		sub.closed = true
		close(sub.ch)
	}
	n.mu.Unlock()

	for _, sub := range subs {
		sub.markDone()
	}
	metrics.NotifierSubscribers.Set(0)
	return len(subs)
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}
