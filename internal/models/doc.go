// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package models defines the data structures shared across Geotrack.

Key Components:

  - TrackedUser: the stored record for one tracked user, also the payload
    of every locationAdded broadcast
  - Address: free-form street address attached to a position
  - LocationUpdate: the field group overwritten by an addLocation call
  - APIResponse: the JSON envelope returned by every HTTP endpoint

A TrackedUser with zero coordinates, a blank address and blank date/time is
the valid "never updated" state produced by addUser.

JSON uses github.com/goccy/go-json everywhere; the field names here are the
wire names clients see, including the "_id" identifier.
*/
package models
