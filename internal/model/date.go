package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date form written for due dates.
	DateLayout = "2006-01-02"
	// TimestampLayout matches JavaScript's Date.prototype.toISOString.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// DueDate is a calendar date kept verbatim as read from the file, normally
// YYYY-MM-DD. Full timestamps are tolerated and reduced to their local day.
type DueDate string

// NewDueDate returns the due date for the calendar day of t.
func NewDueDate(t time.Time) DueDate {
	return DueDate(t.Format(DateLayout))
}

// Day returns local midnight of the due date in loc.
func (d DueDate) Day(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(string(d))
	if raw == "" {
		return time.Time{}, false
	}
	if len(raw) == len(DateLayout) {
		t, err := time.ParseInLocation(DateLayout, raw, loc)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return StartOfDay(t.In(loc)), true
}

func (d DueDate) String() string { return string(d) }

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

// ParseDueInput turns user input into a due date relative to now. Empty input,
// "none" and "clear" return nil, which clears the date.
func ParseDueInput(input string, now time.Time) (*DueDate, error) {
	raw := strings.ToLower(strings.TrimSpace(input))
	switch raw {
	case "", "none", "clear":
		return nil, nil
	case "today":
		d := NewDueDate(now)
		return &d, nil
	case "tomorrow":
		d := NewDueDate(now.AddDate(0, 0, 1))
		return &d, nil
	}
	if strings.HasPrefix(raw, "+") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw[1:], "d"))
		if err != nil || days < 0 {
			return nil, fmt.Errorf("model: invalid relative due date %q", input)
		}
		d := NewDueDate(now.AddDate(0, 0, days))
		return &d, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, now.Location())
	if err != nil {
		return nil, fmt.Errorf("model: invalid due date %q, expected YYYY-MM-DD", input)
	}
	d := NewDueDate(t)
	return &d, nil
}

// Timestamp is an instant kept verbatim as read from the file. Stamps made
// here are written in UTC with millisecond precision; stamps written by other
// tools are passed through untouched and only parsed for display.
type Timestamp struct {
	raw string
}

// NewTimestamp formats t the way new stamps are written.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{raw: t.UTC().Truncate(time.Millisecond).Format(TimestampLayout)}
}

func (t Timestamp) String() string { return t.raw }

func (t Timestamp) IsZero() bool { return strings.TrimSpace(t.raw) == "" }

// zonelessLayouts are accepted for stamps without an offset, read as local time.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	DateLayout,
}

// Time parses the stamp. ok is false when the text is not a recognizable time.
func (t Timestamp) Time() (time.Time, bool) {
	raw := strings.TrimSpace(t.raw)
	if raw == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed, true
	}
	for _, layout := range zonelessLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Format renders the stamp in local time, or verbatim when it does not parse.
func (t Timestamp) Format(layout string) string {
	parsed, ok := t.Time()
	if !ok {
		return t.raw
	}
	return parsed.Local().Format(layout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.raw)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: timestamp must be a string: %w", err)
	}
	t.raw = raw
	return nil
}
