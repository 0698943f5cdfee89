// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package models

// MaxUsernameLength is the longest username accepted after trimming.
const MaxUsernameLength = 8

// DateLayout is the MM/DD/YY layout of TrackedUser.Date.
const DateLayout = "01/02/06"

// Address is the street address reported with a position. Every field may be blank.
type Address struct {
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	City         string `json:"city"`
}

// IsBlank reports whether all address fields are empty.
func (a Address) IsBlank() bool {
	return a.Street == "" && a.StreetNumber == "" && a.City == ""
}

// TrackedUser is one tracked user and their last reported position.
//
// Date and Time are display strings set by the client on each update. Date
// is expected in DateLayout because the inactivity sweep matches it exactly.
type TrackedUser struct {
	ID        string  `json:"_id"`
	Username  string  `json:"username"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   Address `json:"address"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
}

// NewTrackedUser returns a record in the "never updated" state.
func NewTrackedUser(id, username string) TrackedUser {
	return TrackedUser{ID: id, Username: username}
}

// Apply overwrites the whole position group with u.
func (t *TrackedUser) Apply(u LocationUpdate) {
	t.Latitude = u.Latitude
	t.Longitude = u.Longitude
	t.Address = u.Address
	t.Date = u.Date
	t.Time = u.Time
}

// LocationUpdate is the field group written by a single addLocation call.
// A zero Address means "no address supplied" and clears the stored one.
type LocationUpdate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   Address `json:"address"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
}
