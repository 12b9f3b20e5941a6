package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// DueDate keeps the due date exactly as it travels on the wire. Values that
// do not parse are preserved and reported as invalid instead of failing.
type DueDate struct {
	raw string
}

func NewDueDate(t time.Time) DueDate {
	return DueDate{raw: t.UTC().Format(time.RFC3339)}
}

// ParseDueDate wraps a wire value without validating it.
func ParseDueDate(raw string) DueDate {
	return DueDate{raw: strings.TrimSpace(raw)}
}

// DateOnly builds a due date for a calendar day at noon UTC, the way the
// task form submits it so the day survives any timezone shift.
func DateOnly(day string) (DueDate, bool) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(day))
	if err != nil {
		return DueDate{}, false
	}
	return NewDueDate(d.Add(12 * time.Hour)), true
}

func (d DueDate) String() string {
	return d.raw
}

func (d DueDate) IsZero() bool {
	return d.raw == ""
}

// Time returns the parsed instant and whether the value was valid.
func (d DueDate) Time() (time.Time, bool) {
	if d.raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, d.raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortKey treats missing or invalid dates as the Unix epoch so they sort first.
func (d DueDate) SortKey() time.Time {
	if t, ok := d.Time(); ok {
		return t
	}
	return time.Unix(0, 0).UTC()
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	if d.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(d.raw)
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		d.raw = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		d.raw = string(data)
		return nil
	}
	d.raw = strings.TrimSpace(s)
	return nil
}
