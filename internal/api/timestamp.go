package api

import (
	"encoding/json"
	"time"

	"animestudio/internal/jsonutil"
)

// zonedLayouts carry an explicit offset; localLayouts are read in the local zone,
// which is how the backend writes them.
var (
	zonedLayouts = []string{time.RFC3339Nano}
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"}
)

// Timestamp is an ISO-8601 instant as written by the backend.
// Raw keeps the original text; Time is the zero time when Raw does not parse.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// ParseTimestamp parses s leniently. It never fails: unknown formats yield a
// Timestamp with a zero Time that sorts after every real instant.
func ParseTimestamp(s string) Timestamp {
	ts := Timestamp{Raw: s}
	if s == "" {
		return ts
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return ts
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			ts.Time = t
			return ts
		}
	}
	return ts
}

// IsZero reports whether the timestamp did not parse.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}

// Equal compares raw text when both sides have it, otherwise the parsed instants.
func (t Timestamp) Equal(o Timestamp) bool {
	if t.Raw != "" && o.Raw != "" {
		return t.Raw == o.Raw
	}
	return t.Time.Equal(o.Time)
}

// After orders timestamps newest first; zero times are older than everything.
func (t Timestamp) After(o Timestamp) bool {
	return t.Time.After(o.Time)
}

// Format renders the timestamp in local time, or "" when it did not parse.
func (t Timestamp) Format(layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Time.Local().Format(layout)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if jsonutil.IsNull(data) {
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

// MarshalJSON implements json.Marshaler. The raw text is written back as received.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
