// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"time"
)

// DisplayLayout is the local date/time format used in tables and exports.
const DisplayLayout = "2006-01-02 15:04:05"

// Accepted wire layouts. Zone-less values are stored by the services in UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is a point in time decoded from the services' ISO-8601 strings.
// Raw keeps the original text so an unparseable value still displays.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// ParseTimestamp parses s leniently. The returned Timestamp always carries s
// in Raw; Time is zero when no layout matched.
func ParseTimestamp(s string) Timestamp {
	ts := Timestamp{Raw: s}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ts
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			ts.Time = t
			return ts
		}
	}
	return ts
}

// NewTimestamp wraps t, formatting Raw as RFC 3339.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Raw: t.UTC().Format(time.RFC3339Nano)}
}

// IsZero reports whether neither a time nor raw text is present.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero() && t.Raw == ""
}

// Valid reports whether the raw text parsed to a time.
func (t Timestamp) Valid() bool {
	return !t.Time.IsZero()
}

// Local formats the timestamp in the local zone. Unparsed values fall back
// to the raw server text.
func (t Timestamp) Local() string {
	if !t.Valid() {
		return t.Raw
	}
	return t.Time.Local().Format(DisplayLayout)
}

// String returns the raw text.
func (t Timestamp) String() string {
	return t.Raw
}

// MarshalJSON writes the raw text back unchanged.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Raw)
}

// UnmarshalJSON accepts a string or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}
