package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "naive seconds",
			input: "2025-06-01T10:00:00",
			want:  "2025-06-01T10:00:00",
		},
		{
			name:  "offset converted to UTC",
			input: "2025-06-01T12:00:00+02:00",
			want:  "2025-06-01T10:00:00",
		},
		{
			name:  "zulu suffix",
			input: "2025-06-01T10:00:00Z",
			want:  "2025-06-01T10:00:00",
		},
		{
			name:  "fractional seconds truncated",
			input: "2025-06-01T10:00:00.999Z",
			want:  "2025-06-01T10:00:00",
		},
		{
			name:  "space separator",
			input: "2025-06-01 10:00:00",
			want:  "2025-06-01T10:00:00",
		},
		{
			name:  "minute precision",
			input: "2025-06-01T10:00",
			want:  "2025-06-01T10:00:00",
		},
		{
			name:  "bare date",
			input: "2025-06-01",
			want:  "2025-06-01T00:00:00",
		},
		{
			name:  "surrounding whitespace",
			input: "  2025-06-01T10:00:00  ",
			want:  "2025-06-01T10:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not-a-time", "2025-13-01T00:00:00", "01/06/2025"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", input)
		}
	}
}

func TestAt_NormalizesZone(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	local := time.Date(2025, 6, 1, 12, 30, 15, 500_000_000, loc)

	got := At(local)

	if got.String() != "2025-06-01T10:30:15" {
		t.Errorf("At() = %s, want 2025-06-01T10:30:15", got)
	}
	if got.Location() != time.UTC {
		t.Errorf("At() location = %v, want UTC", got.Location())
	}
}

func TestNaive_JSONRoundTrip(t *testing.T) {
	original := Date(2025, time.June, 1, 10, 0, 0)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `"2025-06-01T10:00:00"` {
		t.Errorf("marshal = %s, want %q", data, "2025-06-01T10:00:00")
	}

	var decoded Naive
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !decoded.Equal(original.Time) {
		t.Errorf("round trip = %s, want %s", decoded, original)
	}
}

func TestNaive_UnmarshalOffset(t *testing.T) {
	var n Naive
	if err := json.Unmarshal([]byte(`"2025-06-01T12:00:00+02:00"`), &n); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if n.String() != "2025-06-01T10:00:00" {
		t.Errorf("unmarshal = %s, want 2025-06-01T10:00:00", n)
	}
}

func TestNewWindow(t *testing.T) {
	start := Date(2025, time.June, 1, 10, 0, 0)
	end := Date(2025, time.June, 1, 11, 0, 0)

	if _, err := NewWindow(start, end); err != nil {
		t.Errorf("valid window rejected: %v", err)
	}
	if _, err := NewWindow(end, start); err == nil {
		t.Error("inverted window accepted")
	}
	if _, err := NewWindow(start, start); err == nil {
		t.Error("zero-length window accepted")
	}
}

func TestWindow_Overlaps(t *testing.T) {
	window := func(startHour, endHour int) Window {
		return Window{
			Start: Date(2025, time.June, 1, startHour, 0, 0),
			End:   Date(2025, time.June, 1, endHour, 0, 0),
		}
	}

	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{"identical", window(10, 11), window(10, 11), true},
		{"partial overlap", window(10, 12), window(11, 13), true},
		{"contained", window(10, 14), window(11, 12), true},
		{"touching end to start", window(10, 11), window(11, 12), false},
		{"touching start to end", window(11, 12), window(10, 11), false},
		{"disjoint", window(10, 11), window(12, 13), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps not symmetric: reverse = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := Window{
		Start: Date(2025, time.June, 1, 10, 0, 0),
		End:   Date(2025, time.June, 1, 11, 0, 0),
	}

	tests := []struct {
		name string
		at   Naive
		want bool
	}{
		{"before start", Date(2025, time.June, 1, 9, 59, 59), false},
		{"at start", Date(2025, time.June, 1, 10, 0, 0), true},
		{"inside", Date(2025, time.June, 1, 10, 30, 0), true},
		{"at end", Date(2025, time.June, 1, 11, 0, 0), false},
		{"after end", Date(2025, time.June, 1, 11, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}
