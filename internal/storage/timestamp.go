// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// TimeLayout is the on-disk timestamp format, always in local time.
const TimeLayout = "2006-01-02 15:04:05"

// accepted when reading files written by other tools
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Timestamp is a second-precision local time serialised as TimeLayout.
// The zero value encodes as "".
//
// A value that cannot be parsed decodes as the zero time and keeps its raw
// JSON, which is written back unchanged, so one bad field never makes a
// whole record unreadable.
type Timestamp struct {
	time.Time

	raw string
}

// NewTimestamp truncates t to whole seconds.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// Malformed returns the unparsable value read from disk, or "".
func (t Timestamp) Malformed() string {
	return t.raw
}

// String formats the timestamp, or "" when zero.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.raw != "" && t.IsZero() {
		return []byte(t.raw), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler. null and "" give the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.raw = string(data)
		slog.Warn("ignoring malformed timestamp", "value", t.raw, "error", err)
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		t.raw = string(data)
		slog.Warn("ignoring malformed timestamp", "value", s, "error", err)
		return nil
	}
	*t = parsed
	return nil
}

// ParseTimestamp reads TimeLayout in local time, falling back to ISO 8601.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	if tm, err := time.ParseInLocation(TimeLayout, s, time.Local); err == nil {
		return Timestamp{Time: tm}, nil
	}
	for _, layout := range fallbackLayouts {
		if tm, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return NewTimestamp(tm), nil
		}
	}
	return Timestamp{}, fmt.Errorf("timestamp %q is not in %q format", s, TimeLayout)
}
