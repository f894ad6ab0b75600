package logger

import (
	"strings"
	"testing"
)

func TestScrubKVs(t *testing.T) {
	scrubOnce.Do(func() {})
	scrubEnabled = true
	scrubSalt = ""

	cases := []struct {
		name string
		key  string
		val  interface{}
		want func(got interface{}) bool
	}{
		{
			name: "api_key_redacted",
			key:  "api_key",
			val:  "sk-12345",
			want: func(got interface{}) bool { return got == "[REDACTED]" },
		},
		{
			name: "password_redacted",
			key:  "db_password",
			val:  "hunter2",
			want: func(got interface{}) bool { return got == "[REDACTED]" },
		},
		{
			name: "email_redacted",
			key:  "patient_email",
			val:  "a@b.com",
			want: func(got interface{}) bool { return got == "[REDACTED]" },
		},
		{
			name: "user_id_hashed",
			key:  "user_id",
			val:  "patient-42",
			want: func(got interface{}) bool {
				s, ok := got.(string)
				return ok && strings.HasPrefix(s, "hash:") && !strings.Contains(s, "patient-42")
			},
		},
		{
			name: "patient_id_hashed",
			key:  "patient_id",
			val:  "p-9",
			want: func(got interface{}) bool {
				s, ok := got.(string)
				return ok && strings.HasPrefix(s, "hash:")
			},
		},
		{
			name: "plain_field_untouched",
			key:  "intent",
			val:  "search_records",
			want: func(got interface{}) bool { return got == "search_records" },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := scrubKVs([]interface{}{tc.key, tc.val})
			if len(out) != 2 {
				t.Fatalf("scrubKVs returned %d elements", len(out))
			}
			if !tc.want(out[1]) {
				t.Fatalf("scrubbed value = %v", out[1])
			}
		})
	}
}

func TestScrubKVsHashIsStable(t *testing.T) {
	scrubOnce.Do(func() {})
	scrubEnabled = true

	a := scrubKVs([]interface{}{"user_id", "patient-42"})[1]
	b := scrubKVs([]interface{}{"user_id", "patient-42"})[1]
	if a != b {
		t.Fatalf("hashes differ for equal inputs: %v vs %v", a, b)
	}
}

func TestScrubKVsNestedMap(t *testing.T) {
	scrubOnce.Do(func() {})
	scrubEnabled = true

	out := scrubKVs([]interface{}{"details", map[string]interface{}{
		"user_id": "p-1",
		"intent":  "search_records",
	}})
	m, ok := out[1].(map[string]interface{})
	if !ok {
		t.Fatalf("nested map lost: %v", out[1])
	}
	if s, _ := m["user_id"].(string); !strings.HasPrefix(s, "hash:") {
		t.Fatalf("nested identity not hashed: %v", m["user_id"])
	}
	if m["intent"] != "search_records" {
		t.Fatalf("nested plain field changed: %v", m["intent"])
	}
}

func TestScrubKVsOddLength(t *testing.T) {
	scrubOnce.Do(func() {})
	scrubEnabled = true

	out := scrubKVs([]interface{}{"user_id", "p-1", "dangling"})
	if len(out) != 3 {
		t.Fatalf("odd trailing element dropped: %v", out)
	}
	if out[2] != "dangling" {
		t.Fatalf("trailing element changed: %v", out[2])
	}
}
