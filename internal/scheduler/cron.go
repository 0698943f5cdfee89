// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

// Package scheduler runs the inactivity sweep on a cron schedule.
package scheduler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultSchedule runs the sweep once a day at midnight.
const DefaultSchedule = "0 0 * * *"

// CronExpression is a parsed 5-field cron expression:
// minute hour day-of-month month day-of-week.
type CronExpression struct {
	Minutes     []int // 0-59
	Hours       []int // 0-23
	DaysOfMonth []int // 1-31
	Months      []int // 1-12
	DaysOfWeek  []int // 0-6 (0 = Sunday)
}

// ParseCron parses a standard 5-field cron expression.
//
// Supported syntax:
//   - * (any value)
//   - n (specific value)
//   - n-m (range)
//   - n,m,o (list)
//   - */n (step from start)
//   - n-m/s (step in range)
func ParseCron(expr string) (*CronExpression, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}

	specs := []struct {
		name     string
		min, max int
	}{
		{"minute", 0, 59},
		{"hour", 0, 23},
		{"day-of-month", 1, 31},
		{"month", 1, 12},
		{"day-of-week", 0, 7},
	}

	parsed := make([][]int, len(specs))
	for i, spec := range specs {
		values, err := parseField(fields[i], spec.min, spec.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", spec.name, err)
		}
		parsed[i] = values
	}

	// 7 is an alias for Sunday.
	dow := parsed[4]
	for i, d := range dow {
		if d == 7 {
			dow[i] = 0
		}
	}

	return &CronExpression{
		Minutes:     parsed[0],
		Hours:       parsed[1],
		DaysOfMonth: parsed[2],
		Months:      parsed[3],
		DaysOfWeek:  uniqueInts(dow),
	}, nil
}

// maxSearch bounds NextRun for expressions that can never fire, such as
// February 30th.
const maxSearch = 4 * 366 * 24 * time.Hour

// NextRun returns the first matching minute strictly after the given time,
// evaluated in loc. Nil loc means UTC. The zero time is returned when
// nothing matches within four years.
func (c *CronExpression) NextRun(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc).Truncate(time.Minute).Add(time.Minute)
	limit := t.Add(maxSearch)

	for t.Before(limit) {
		if !slices.Contains(c.Months, int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
			continue
		}
		if !c.matchesDay(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
			continue
		}
		if !slices.Contains(c.Hours, t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if !slices.Contains(c.Minutes, t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t
	}
	return time.Time{}
}

// matchesDay applies the usual cron rule: when both day fields are
// restricted, either one matching is enough.
func (c *CronExpression) matchesDay(t time.Time) bool {
	domMatch := slices.Contains(c.DaysOfMonth, t.Day())
	dowMatch := slices.Contains(c.DaysOfWeek, int(t.Weekday()))

	domWildcard := len(c.DaysOfMonth) == 31
	dowWildcard := len(c.DaysOfWeek) == 7

	switch {
	case domWildcard && dowWildcard:
		return true
	case domWildcard:
		return dowMatch
	case dowWildcard:
		return domMatch
	default:
		return domMatch || dowMatch
	}
}

func parseField(field string, minVal, maxVal int) ([]int, error) {
	if field == "*" {
		return rangeInts(minVal, maxVal), nil
	}

	var result []int
	for _, part := range strings.Split(field, ",") {
		values, err := parseFieldPart(part, minVal, maxVal)
		if err != nil {
			return nil, err
		}
		result = append(result, values...)
	}
	return uniqueInts(result), nil
}

//nolint:gocyclo // one branch per cron syntax form
func parseFieldPart(part string, minVal, maxVal int) ([]int, error) {
	base, stepStr, hasStep := strings.Cut(part, "/")

	step := 1
	if hasStep {
		var err error
		step, err = strconv.Atoi(stepStr)
		if err != nil || step <= 0 {
			return nil, fmt.Errorf("invalid step value: %s", stepStr)
		}
	}

	var start, end int
	switch {
	case base == "*":
		start, end = minVal, maxVal
	case strings.Contains(base, "-"):
		lo, hi, _ := strings.Cut(base, "-")
		var err error
		if start, err = strconv.Atoi(lo); err != nil {
			return nil, fmt.Errorf("invalid range start: %s", lo)
		}
		if end, err = strconv.Atoi(hi); err != nil {
			return nil, fmt.Errorf("invalid range end: %s", hi)
		}
		if start > end || start < minVal || end > maxVal {
			return nil, fmt.Errorf("invalid range: %d-%d (min=%d, max=%d)", start, end, minVal, maxVal)
		}
	default:
		val, err := strconv.Atoi(base)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", base)
		}
		if val < minVal || val > maxVal {
			return nil, fmt.Errorf("value out of range: %d (min=%d, max=%d)", val, minVal, maxVal)
		}
		start, end = val, val
		if hasStep {
			end = maxVal
		}
	}

	var result []int
	for i := start; i <= end; i += step {
		result = append(result, i)
	}
	return result, nil
}

func rangeInts(start, end int) []int {
	result := make([]int, end-start+1)
	for i := range result {
		result[i] = start + i
	}
	return result
}

// uniqueInts sorts and deduplicates in place.
func uniqueInts(values []int) []int {
	slices.Sort(values)
	return slices.Compact(values)
}
