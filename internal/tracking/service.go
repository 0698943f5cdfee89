// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

// Package tracking implements the user tracking operations.
//
// Service is the only writer of the store. Every successful location update
// is published to the notifier after the write has committed, so subscribers
// always receive the record as stored. Failed updates publish nothing.
package tracking

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/models"
	"github.com/tomtom215/geotrack/internal/store"
	"github.com/tomtom215/geotrack/internal/sweeper"
	"github.com/tomtom215/geotrack/internal/validation"
)

// HelloResponse is returned by Hello.
const HelloResponse = "Ping"

// Publisher receives every record written by AddLocation.
type Publisher interface {
	Publish(user models.TrackedUser)
}

// Sweeper runs one inactivity sweep.
type Sweeper interface {
	Run(ctx context.Context) sweeper.Result
}

// UsersResult is the outcome of GetAllUsers.
type UsersResult struct {
	Users []models.TrackedUser

	// Suppressed is the store error that was logged instead of returned.
	// Users is empty whenever it is set.
	Suppressed error
}

// Degraded reports whether the list is a fallback after a store failure.
func (r UsersResult) Degraded() bool {
	return r.Suppressed != nil
}

// SweepResult is the outcome of CleanUpInactiveUsers.
type SweepResult = sweeper.Result

// LocationInput is one position report.
type LocationInput struct {
	Latitude  *float64        `json:"latitude" validate:"required,latitude"`
	Longitude *float64        `json:"longitude" validate:"required,longitude"`
	Address   *models.Address `json:"address"`
	Date      *string         `json:"date" validate:"required"`
	Time      *string         `json:"time" validate:"required"`
}

// toUpdate converts a validated input. A missing address becomes blank.
func (in LocationInput) toUpdate() models.LocationUpdate {
	u := models.LocationUpdate{
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		Date:      *in.Date,
		Time:      *in.Time,
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	return u
}

type usernameInput struct {
	Username string `json:"username" validate:"required,max=8"`
}

// updateStripes bounds the number of per-id update locks.
const updateStripes = 64

// Service implements the tracking operations.
type Service struct {
	store     store.Store
	publisher Publisher
	sweeper   Sweeper

	// Held across write and publish so subscribers see one id's updates in
	// commit order. Different ids rarely share a stripe.
	updateLocks [updateStripes]sync.Mutex
}

func (s *Service) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(id)))
	return &s.updateLocks[h.Sum32()%updateStripes]
}

// NewService wires a Service.
func NewService(st store.Store, pub Publisher, sw Sweeper) *Service {
	return &Service{store: st, publisher: pub, sweeper: sw}
}

// Hello is the liveness query.
func (s *Service) Hello() string {
	return HelloResponse
}

// GetUser returns one user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.TrackedUser, error) {
	const op = "getUser"

	if len(id) < store.IDLength {
		return nil, invalidArgument(op, "invalid user id %q", id)
	}

	user, err := s.store.GetByID(ctx, id)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, newError(KindNotFound, op, "user not found", err)
	case errors.Is(err, store.ErrInvalidID):
		// Long enough to pass the length check but not a record id.
		logging.Ctx(ctx).Debug().Err(err).Str("user_id", id).Msg("Malformed user id")
		return nil, newError(KindLookupFailed, op, "error getting user", err)
	default:
		logging.Ctx(ctx).Error().Err(err).Str("user_id", id).Msg("Failed to look up user")
		return nil, newError(KindLookupFailed, op, "error getting user", err)
	}
}

// GetLocations returns the users found among ids. Unknown or malformed ids
// are left out of the result.
func (s *Service) GetLocations(ctx context.Context, ids []string) ([]models.TrackedUser, error) {
	const op = "getLocations"

	users, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("id_count", len(ids)).Msg("Failed to look up locations")
		return nil, newError(KindLookupFailed, op, "error getting locations", err)
	}
	return users, nil
}

// GetAllUsers returns every user. A store failure yields an empty list with
// the error recorded in the result rather than returned.
func (s *Service) GetAllUsers(ctx context.Context) UsersResult {
	users, err := s.store.GetAll(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to list users")
		return UsersResult{Users: []models.TrackedUser{}, Suppressed: err}
	}
	return UsersResult{Users: users}
}

// AddUser creates a user. Surrounding whitespace is trimmed from username
// before it is checked and stored.
func (s *Service) AddUser(ctx context.Context, username string) (*models.TrackedUser, error) {
	const op = "addUser"

	in := usernameInput{Username: strings.TrimSpace(username)}
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, newError(KindInvalidArgument, op, verr.Error(), verr)
	}

	user, err := s.store.Create(ctx, in.Username)
	switch {
	case err == nil:
		logging.Ctx(ctx).Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User created")
		return user, nil
	case errors.Is(err, store.ErrDuplicateUsername):
		return nil, newError(KindDuplicateUsername, op, err.Error(), err)
	default:
		logging.Ctx(ctx).Error().Err(err).Str("username", in.Username).Msg("Failed to create user")
		return nil, newError(KindCreateFailed, op, "error creating user", err)
	}
}

// DeleteUser removes a user and returns the removed record.
func (s *Service) DeleteUser(ctx context.Context, id string) (*models.TrackedUser, error) {
	const op = "deleteUser"

	user, err := s.store.Delete(ctx, id)
	if err != nil {
		if store.IsDomainError(err) {
			logging.Ctx(ctx).Debug().Err(err).Str("user_id", id).Msg("Delete of unknown user")
		} else {
			logging.Ctx(ctx).Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		}
		return nil, newError(KindDeleteFailed, op, "error deleting user", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User deleted")
	return user, nil
}

// AddLocation overwrites a user's position and broadcasts the stored record.
func (s *Service) AddLocation(ctx context.Context, id string, in LocationInput) (*models.TrackedUser, error) {
	const op = "addLocation"

	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, newError(KindInvalidArgument, op, verr.Error(), verr)
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	user, err := s.store.Update(ctx, id, in.toUpdate())
	if err != nil {
		if store.IsDomainError(err) {
			logging.Ctx(ctx).Debug().Err(err).Str("user_id", id).Msg("Location update for unknown user")
		} else {
			logging.Ctx(ctx).Error().Err(err).Str("user_id", id).Msg("Failed to update location")
		}
		return nil, newError(KindUpdateFailed, op, "error updating location", err)
	}

	s.publisher.Publish(*user)

	logging.Ctx(ctx).Debug().
		Str("user_id", user.ID).
		Float64("latitude", user.Latitude).
		Float64("longitude", user.Longitude).
		Msg("Location updated")
	return user, nil
}

// CleanUpInactiveUsers runs the inactivity sweep once.
func (s *Service) CleanUpInactiveUsers(ctx context.Context) SweepResult {
	return s.sweeper.Run(ctx)
}

// Ready reports whether the store can serve requests.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
