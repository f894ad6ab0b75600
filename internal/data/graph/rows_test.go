package graph

import (
	"testing"
	"time"
)

func TestPropTime(t *testing.T) {
	ref := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		val  any
		want time.Time
	}{
		{name: "native_time", val: ref, want: ref},
		{name: "rfc3339_string", val: "2024-03-01T10:30:00Z", want: ref},
		{name: "bare_date_string", val: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage_string", val: "not a date", want: time.Time{}},
		{name: "missing_key", val: nil, want: time.Time{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			props := map[string]any{}
			if tc.val != nil {
				props["created_at"] = tc.val
			}
			got := propTime(props, "created_at")
			if !got.Equal(tc.want) {
				t.Fatalf("propTime=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestPropString(t *testing.T) {
	props := map[string]any{"name": "  ibuprofen  ", "count": 3}
	if got := propString(props, "name"); got != "ibuprofen" {
		t.Fatalf("propString trimmed = %q", got)
	}
	if got := propString(props, "count"); got != "" {
		t.Fatalf("non-string property should read empty, got %q", got)
	}
	if got := propString(nil, "name"); got != "" {
		t.Fatalf("nil props should read empty, got %q", got)
	}
}

func TestNormalizeDateBound(t *testing.T) {
	cases := []struct {
		name string
		in   string
		end  bool
		want string
	}{
		{name: "empty", in: "", end: false, want: ""},
		{name: "bare_date_start", in: "2024-01-15", end: false, want: "2024-01-15T00:00:00Z"},
		{name: "bare_date_end", in: "2024-01-15", end: true, want: "2024-01-15T23:59:59Z"},
		{name: "full_datetime_unchanged", in: "2024-01-15T08:00:00Z", end: true, want: "2024-01-15T08:00:00Z"},
		{name: "padded", in: "  2024-01-15  ", end: false, want: "2024-01-15T00:00:00Z"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeDateBound(tc.in, tc.end); got != tc.want {
				t.Fatalf("normalizeDateBound(%q, %v)=%q, want %q", tc.in, tc.end, got, tc.want)
			}
		})
	}
}
