package claims

import (
	"testing"
	"time"
)

func TestParseDateOrAbsent(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2025-01-10", "2025-01-10"},
		{" 2025-01-10 ", "2025-01-10"},
		{"January 10, 2025", "2025-01-10"},
		{"01/10/2025", "2025-01-10"},
		{"2025-01-10T12:00:00Z", "2025-01-10"},
		// 03:00 UTC is still the previous evening in UTC-5.
		{"2025-01-10T03:00:00Z", "2025-01-09"},
		{"2025-01-10T03:00:00.123456", "2025-01-09"},
		{"2025-01-10T03:00:00+09:00", "2025-01-09"},
	}

	for _, tt := range tests {
		got, ok := ParseDateOrAbsent(tt.raw, testZone)
		if !ok {
			t.Errorf("ParseDateOrAbsent(%q): expected a date", tt.raw)
			continue
		}
		if FormatDate(got) != tt.want {
			t.Errorf("ParseDateOrAbsent(%q): expected %s, got %s", tt.raw, tt.want, FormatDate(got))
		}
		if got.Hour() != 0 || got.Minute() != 0 || got.Location() != testZone {
			t.Errorf("ParseDateOrAbsent(%q): expected midnight in reference zone, got %v", tt.raw, got)
		}
	}
}

func TestParseDateOrAbsentMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "soon", "2025-13-45", "next Tuesday", "10.01.2025"} {
		if _, ok := ParseDateOrAbsent(raw, testZone); ok {
			t.Errorf("ParseDateOrAbsent(%q): expected absent", raw)
		}
		if OptionalDate(raw, testZone) != nil {
			t.Errorf("OptionalDate(%q): expected nil", raw)
		}
	}
}

func TestParseTimeOrAbsentKeepsInstant(t *testing.T) {
	got, ok := ParseTimeOrAbsent("2025-01-10T15:04:05.5Z", testZone)
	if !ok {
		t.Fatal("Expected timestamp to parse")
	}
	want := time.Date(2025, 1, 10, 15, 4, 5, 500000000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestDateOnlyIsStableAcrossTheDay(t *testing.T) {
	morning := time.Date(2025, 3, 1, 6, 0, 0, 0, testZone)
	night := time.Date(2025, 3, 1, 23, 59, 0, 0, testZone)

	if !DateOnly(morning, testZone).Equal(DateOnly(night, testZone)) {
		t.Error("Expected the same civil date regardless of render time")
	}
	if !Today(night, testZone).Equal(*mustDate(t, "2025-03-01")) {
		t.Errorf("Expected today 2025-03-01, got %v", Today(night, testZone))
	}
}
