// Package timeutil normalizes wall-clock timestamps into a single canonical
// form so that every comparison in the system runs on one clock: naive UTC at
// second precision, serialized as "2006-01-02T15:04:05" with no offset.
//
// Inputs carrying an offset are converted to UTC and the offset is dropped;
// inputs without one are taken as already UTC. The canonical string form is
// lexicographically ordered, so SQL range comparisons on stored text columns
// agree with Go-side comparisons.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical wire and storage format.
const Layout = "2006-01-02T15:04:05"

// parseLayouts are the accepted ISO 8601 shapes, tried in order. Fractional
// seconds after a full seconds field are consumed by time.Parse even when the
// layout omits them, then truncated away.
var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Naive is a timestamp with the offset already normalized away. The zero
// value is the zero time.
type Naive struct {
	time.Time
}

// At normalizes an arbitrary time to canonical form.
func At(t time.Time) Naive {
	return Naive{t.UTC().Truncate(time.Second)}
}

// Now returns the current instant in canonical form.
func Now() Naive {
	return At(time.Now())
}

// Date builds a canonical timestamp from components, for tests and fixtures.
func Date(year int, month time.Month, day, hour, min, sec int) Naive {
	return Naive{time.Date(year, month, day, hour, min, sec, 0, time.UTC)}
}

// Parse reads an ISO 8601 timestamp in any accepted shape.
func Parse(raw string) (Naive, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Naive{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t), nil
		}
	}
	return Naive{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

func (n Naive) String() string {
	return n.Format(Layout)
}

func (n Naive) MarshalJSON() ([]byte, error) {
	return []byte(`"` + n.Format(Layout) + `"`), nil
}

func (n *Naive) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*n = Naive{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// Window is a half-open interval [Start, End).
type Window struct {
	Start Naive
	End   Naive
}

// NewWindow rejects inverted and zero-length windows.
func NewWindow(start, end Naive) (Window, error) {
	if !end.After(start.Time) {
		return Window{}, fmt.Errorf("end must be after start")
	}
	return Window{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints (one window ending exactly when the other starts) do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End.Time) && w.End.After(other.Start.Time)
}

// Contains reports whether t falls inside the window: Start <= t < End.
func (w Window) Contains(t Naive) bool {
	return !t.Before(w.Start.Time) && t.Before(w.End.Time)
}
