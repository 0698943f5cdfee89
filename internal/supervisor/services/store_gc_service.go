// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package services

import (
	"context"
	"time"

	"github.com/tomtom215/geotrack/internal/logging"
)

// GarbageCollector is satisfied by *store.BadgerStore.
type GarbageCollector interface {
	RunGC() error
}

// StoreGCService reclaims BadgerDB value log space on a fixed interval.
// A failed GC pass is logged and retried on the next tick; it never
// restarts the service.
type StoreGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewStoreGCService wraps gc. A non-positive interval means 10m.
func NewStoreGCService(gc GarbageCollector, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		gc:       gc,
		interval: interval,
		name:     "store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger := logging.WithComponent(s.name)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.gc.RunGC(); err != nil {
				logger.Warn().Err(err).Msg("Value log GC failed")
			}
		}
	}
}

func (s *StoreGCService) String() string {
	return s.name
}
