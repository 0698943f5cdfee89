// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/metrics"
	"github.com/tomtom215/geotrack/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	userKeyPrefix     = "user:"
	usernameKeyPrefix = "username:"
)

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory. Used by tests and ephemeral runs.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// MaxConflictRetries bounds how often a transaction is retried after
	// badger.ErrConflict. Zero means the default of 5.
	MaxConflictRetries int

	// GCDiscardRatio is passed to RunValueLogGC. Zero means 0.5.
	GCDiscardRatio float64
}

// BadgerStore implements Store on BadgerDB.
//
// Records live under "user:<id>" as JSON; "username:<name>" maps a username
// to its id and enforces uniqueness. Every mutation is a read-write
// transaction, so a write that raced with another on the same keys fails
// with badger.ErrConflict and is retried against fresh state.
type BadgerStore struct {
	db         *badger.DB
	maxRetries int
	gcRatio    float64
	closed     atomic.Bool
}

// OpenBadger opens (or creates) a BadgerStore.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger store: path is required unless in-memory")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := NewBadgerStore(db, cfg)

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("User store opened")
	return s, nil
}

// NewBadgerStore wraps an already open database. The store owns db from
// here on and closes it in Close.
func NewBadgerStore(db *badger.DB, cfg BadgerConfig) *BadgerStore {
	retries := cfg.MaxConflictRetries
	if retries <= 0 {
		retries = 5
	}
	ratio := cfg.GCDiscardRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &BadgerStore{db: db, maxRetries: retries, gcRatio: ratio}
}

func userKey(id string) []byte {
	return []byte(userKeyPrefix + id)
}

func usernameKey(name string) []byte {
	return []byte(usernameKeyPrefix + name)
}

// begin checks the preconditions shared by every operation.
func (s *BadgerStore) begin(ctx context.Context) error {
	if s.closed.Load() {
		return fmt.Errorf("%w: closed", ErrUnavailable)
	}
	return ctx.Err()
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreOperation(op, time.Since(start), errorType(*err))
}

// update runs fn in a read-write transaction, retrying on write conflicts.
// fn must not carry state between attempts.
func (s *BadgerStore) update(ctx context.Context, op string, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if attempt >= s.maxRetries {
			return fmt.Errorf("%s: gave up after %d conflicts: %w", op, attempt+1, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		metrics.StoreConflictRetries.WithLabelValues(op).Inc()
		logging.Debug().Str("operation", op).Int("attempt", attempt+1).Msg("Retrying store transaction after conflict")
	}
}

func readUser(txn *badger.Txn, id string) (*models.TrackedUser, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var user models.TrackedUser
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &user)
	}); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &user, nil
}

func writeUser(txn *badger.Txn, user *models.TrackedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := txn.Set(userKey(user.ID), data); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return nil
}

func removeUser(txn *badger.Txn, user *models.TrackedUser) error {
	if err := txn.Delete(userKey(user.ID)); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := txn.Delete(usernameKey(user.Username)); err != nil {
		return fmt.Errorf("delete username index: %w", err)
	}
	return nil
}

// Create stores a new user in the "never updated" state.
func (s *BadgerStore) Create(ctx context.Context, username string) (user *models.TrackedUser, err error) {
	defer observe("create", time.Now(), &err)
	if err = s.begin(ctx); err != nil {
		return nil, err
	}

	id, err := NewID()
	if err != nil {
		return nil, err
	}

	err = s.update(ctx, "create", func(txn *badger.Txn) error {
		_, getErr := txn.Get(usernameKey(username))
		if getErr == nil {
			return fmt.Errorf("%w: username %q already exists", ErrDuplicateUsername, username)
		}
		if !errors.Is(getErr, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username: %w", getErr)
		}

		u := models.NewTrackedUser(id, username)
		if err := writeUser(txn, &u); err != nil {
			return err
		}
		if err := txn.Set(usernameKey(username), []byte(id)); err != nil {
			return fmt.Errorf("set username index: %w", err)
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns one user.
func (s *BadgerStore) GetByID(ctx context.Context, id string) (user *models.TrackedUser, err error) {
	defer observe("get", time.Now(), &err)
	if err = s.begin(ctx); err != nil {
		return nil, err
	}
	if id, err = NormalizeID(id); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		var readErr error
		user, readErr = readUser(txn, id)
		return readErr
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByIDs returns the users found among ids, ordered by id.
func (s *BadgerStore) GetByIDs(ctx context.Context, ids []string) (users []models.TrackedUser, err error) {
	defer observe("get_many", time.Now(), &err)
	if err = s.begin(ctx); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id, normErr := NormalizeID(raw)
		if normErr != nil {
			continue
		}
		wanted[id] = struct{}{}
	}

	users = make([]models.TrackedUser, 0, len(wanted))
	if len(wanted) == 0 {
		return users, nil
	}

	err = s.db.View(func(txn *badger.Txn) error {
		for id := range wanted {
			u, readErr := readUser(txn, id)
			if errors.Is(readErr, ErrNotFound) {
				continue
			}
			if readErr != nil {
				return readErr
			}
			users = append(users, *u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ids are time-ordered, so id order is creation order.
	slices.SortFunc(users, func(a, b models.TrackedUser) int {
		return strings.Compare(a.ID, b.ID)
	})
	return users, nil
}

// GetAll returns every user ordered by id.
func (s *BadgerStore) GetAll(ctx context.Context) (users []models.TrackedUser, err error) {
	defer observe("get_all", time.Now(), &err)
	if err = s.begin(ctx); err != nil {
		return nil, err
	}

	users = make([]models.TrackedUser, 0)
	err = s.scan(func(u *models.TrackedUser) bool {
		users = append(users, *u)
		return true
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// scan walks every user record in key order until fn returns false.
func (s *BadgerStore) scan(fn func(u *models.TrackedUser) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(userKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var u models.TrackedUser
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			}); err != nil {
				return fmt.Errorf("decode user %s: %w", it.Item().Key(), err)
			}
			if !fn(&u) {
				return nil
			}
		}
		return nil
	})
}

// Update overwrites the position group of one user.
func (s *BadgerStore) Update(ctx context.Context, id string, update models.LocationUpdate) (user *models.TrackedUser, err error) {
	defer observe("update", time.Now(), &err)
	if err = s.begin(ctx); err != nil {
		return nil, err
	}
	if id, err = NormalizeID(id); err != nil {
		return nil, err
	}

	err = s.update(ctx, "update", func(txn *badger.Txn) error {
		current, readErr := readUser(txn, id)
		if readErr != nil {
			return readErr
		}
		current.Apply(update)
		if err := writeUser(txn, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes one user and its username index entry.
func (s *BadgerStore) Delete(ctx context.Context, id string) (user *models.TrackedUser, err error) {
	defer observe("delete", time.Now(), &err)
	if err = s.begin(ctx); err != nil {
		return nil, err
	}
	if id, err = NormalizeID(id); err != nil {
		return nil, err
	}

	err = s.update(ctx, "delete", func(txn *badger.Txn) error {
		current, readErr := readUser(txn, id)
		if readErr != nil {
			return readErr
		}
		if err := removeUser(txn, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteByLastUpdateDate removes every user whose Date equals date.
//
// Candidates are collected from a snapshot and then removed one per
// transaction after re-reading the record, so a user whose date changed
// after the snapshot survives.
func (s *BadgerStore) DeleteByLastUpdateDate(ctx context.Context, date string) (deleted int, err error) {
	defer observe("delete_by_date", time.Now(), &err)
	if err = s.begin(ctx); err != nil {
		return 0, err
	}

	var candidates []string
	err = s.scan(func(u *models.TrackedUser) bool {
		if u.Date == date {
			candidates = append(candidates, u.ID)
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("scan users: %w", err)
	}

	for _, id := range candidates {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return deleted, ctxErr
		}

		removed, txErr := s.deleteIfDate(ctx, id, date)
		if txErr != nil {
			return deleted, fmt.Errorf("delete user %s: %w", id, txErr)
		}
		if removed {
			deleted++
		}
	}
	return deleted, nil
}

// deleteIfDate removes the user only if its stored Date still equals date.
// A user that is gone or was updated since the scan is left alone.
func (s *BadgerStore) deleteIfDate(ctx context.Context, id, date string) (removed bool, err error) {
	err = s.update(ctx, "delete_by_date", func(txn *badger.Txn) error {
		removed = false
		current, readErr := readUser(txn, id)
		if errors.Is(readErr, ErrNotFound) {
			return nil
		}
		if readErr != nil {
			return readErr
		}
		if current.Date != date {
			return nil
		}
		if err := removeUser(txn, current); err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}

// Ping reports whether the database is open and readable.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("%w: database closed", ErrUnavailable)
	}
	return s.db.View(func(_ *badger.Txn) error { return nil })
}

// RunGC reclaims value log space until Badger reports nothing left to rewrite.
// In-memory stores have no value log and return immediately.
func (s *BadgerStore) RunGC() error {
	if s.closed.Load() {
		return fmt.Errorf("%w: closed", ErrUnavailable)
	}
	if s.db.Opts().InMemory {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordStoreGC(time.Since(start)) }()

	for {
		err := s.db.RunValueLogGC(s.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the database. Later calls fail with ErrUnavailable.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("User store closed")
	return nil
}
