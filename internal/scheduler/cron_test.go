// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package scheduler

import (
	"slices"
	"testing"
	"time"
)

func TestParseCron(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"daily at midnight", "0 0 * * *", false},
		{"every 5 minutes", "*/5 * * * *", false},
		{"monday at 9am", "0 9 * * 1", false},
		{"weekdays", "0 * * * 1-5", false},
		{"list", "0,15,30,45 * * * *", false},
		{"stepped range", "0-30/10 * * * *", false},
		{"sunday as 7", "0 0 * * 7", false},
		{"too few fields", "0 9 * *", true},
		{"too many fields", "0 9 * * * *", true},
		{"minute out of range", "60 * * * *", true},
		{"hour out of range", "0 24 * * *", true},
		{"day zero", "0 0 0 * *", true},
		{"month out of range", "0 0 1 13 *", true},
		{"backwards range", "0 0 * * 5-1", true},
		{"zero step", "*/0 * * * *", true},
		{"garbage", "a b c d e", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCron(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCron(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestParseCronFields(t *testing.T) {
	c, err := ParseCron("0-30/10 1,3 * * 7,0")
	if err != nil {
		t.Fatalf("ParseCron() error = %v", err)
	}
	if !slices.Equal(c.Minutes, []int{0, 10, 20, 30}) {
		t.Errorf("Minutes = %v", c.Minutes)
	}
	if !slices.Equal(c.Hours, []int{1, 3}) {
		t.Errorf("Hours = %v", c.Hours)
	}
	if !slices.Equal(c.DaysOfWeek, []int{0}) {
		t.Errorf("DaysOfWeek = %v", c.DaysOfWeek)
	}
	if len(c.DaysOfMonth) != 31 || len(c.Months) != 12 {
		t.Errorf("wildcards not expanded: %d days, %d months", len(c.DaysOfMonth), len(c.Months))
	}

	c, err = ParseCron("5/20 * * * *")
	if err != nil {
		t.Fatalf("ParseCron() error = %v", err)
	}
	if !slices.Equal(c.Minutes, []int{5, 25, 45}) {
		t.Errorf("Minutes = %v", c.Minutes)
	}
}

func TestNextRun(t *testing.T) {
	utc := time.UTC
	tests := []struct {
		name  string
		expr  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "daily midnight rolls to next day",
			expr:  "0 0 * * *",
			after: time.Date(2026, 10, 15, 9, 30, 0, 0, utc),
			want:  time.Date(2026, 10, 16, 0, 0, 0, 0, utc),
		},
		{
			name:  "strictly after an exact match",
			expr:  "0 0 * * *",
			after: time.Date(2026, 10, 16, 0, 0, 0, 0, utc),
			want:  time.Date(2026, 10, 17, 0, 0, 0, 0, utc),
		},
		{
			name:  "seconds are ignored",
			expr:  "*/15 * * * *",
			after: time.Date(2026, 10, 15, 9, 14, 59, 0, utc),
			want:  time.Date(2026, 10, 15, 9, 15, 0, 0, utc),
		},
		{
			name:  "year boundary",
			expr:  "30 2 1 1 *",
			after: time.Date(2026, 6, 1, 0, 0, 0, 0, utc),
			want:  time.Date(2027, 1, 1, 2, 30, 0, 0, utc),
		},
		{
			name:  "day of week",
			expr:  "0 9 * * 1",
			after: time.Date(2026, 10, 15, 12, 0, 0, 0, utc), // Thursday
			want:  time.Date(2026, 10, 19, 9, 0, 0, 0, utc),
		},
		{
			name:  "day of month or day of week",
			expr:  "0 0 20 * 6",
			after: time.Date(2026, 10, 15, 12, 0, 0, 0, utc),
			want:  time.Date(2026, 10, 17, 0, 0, 0, 0, utc), // Saturday before the 20th
		},
		{
			name:  "leap day",
			expr:  "0 0 29 2 *",
			after: time.Date(2026, 3, 1, 0, 0, 0, 0, utc),
			want:  time.Date(2028, 2, 29, 0, 0, 0, 0, utc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCron(tt.expr)
			if err != nil {
				t.Fatalf("ParseCron() error = %v", err)
			}
			if got := c.NextRun(tt.after, utc); !got.Equal(tt.want) {
				t.Errorf("NextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextRunTimeZone(t *testing.T) {
	c, err := ParseCron("0 0 * * *")
	if err != nil {
		t.Fatalf("ParseCron() error = %v", err)
	}
	plus9 := time.FixedZone("UTC+9", 9*60*60)

	// 14:00 UTC is 23:00 in UTC+9, so local midnight is an hour away.
	after := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)
	got := c.NextRun(after, plus9)
	if want := time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("NextRun() = %v, want %v", got, want)
	}

	if got := c.NextRun(after, nil); got.Location() != time.UTC {
		t.Errorf("nil location should mean UTC, got %v", got.Location())
	}
}

func TestNextRunNeverFires(t *testing.T) {
	c, err := ParseCron("0 0 30 2 *")
	if err != nil {
		t.Fatalf("ParseCron() error = %v", err)
	}
	if got := c.NextRun(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC); !got.IsZero() {
		t.Errorf("NextRun() = %v, want zero", got)
	}
}
