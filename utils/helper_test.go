package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate = %s, want %s", got, want)
	}

	for _, bad := range []string{"", "   ", "01/05/2024", "2024-13-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", bad)
		}
	}
}

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-08-24", "2026-08-24"}, // Monday maps to itself
		{"2026-08-28", "2026-08-24"}, // Friday
		{"2026-08-30", "2026-08-24"}, // Sunday belongs to the preceding Monday
		{"2026-08-31", "2026-08-31"}, // next Monday
	}
	for _, tc := range cases {
		in, _ := ParseDate(tc.in)
		want, _ := ParseDate(tc.want)
		if got := StartOfWeek(in); !got.Equal(want) {
			t.Errorf("StartOfWeek(%s) = %s, want %s", tc.in, FormatDate(got), tc.want)
		}
	}

	// Time of day never shifts the week.
	late := time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)
	if got := StartOfWeek(late); FormatDate(got) != "2026-08-24" {
		t.Errorf("StartOfWeek(sunday 23:59) = %s, want 2026-08-24", FormatDate(got))
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 6, 15, 18, 30, 45, 123, time.FixedZone("UTC+7", 7*3600))
	got := DateOnly(in)
	// 18:30 UTC+7 is 11:30 UTC, still June 15.
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly = %s, want %s", got, want)
	}
}
