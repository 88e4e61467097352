package claims

import (
	"testing"
	"time"
)

var testZone = time.FixedZone("UTC-05:00", -5*3600)

func mustDate(t *testing.T, s string) *time.Time {
	t.Helper()
	d, ok := ParseDateOrAbsent(s, testZone)
	if !ok {
		t.Fatalf("failed to parse test date %q", s)
	}
	return &d
}

func mustTime(t *testing.T, s string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("failed to parse test time %q: %v", s, err)
	}
	return &ts
}
