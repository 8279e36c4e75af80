package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLockForIsDeterministic(t *testing.T) {
	m := &SessionManager{}

	id := "8b9f3a1e-0000-4000-8000-000000000001"
	if m.lockFor(id) != m.lockFor(id) {
		t.Fatalf("same session id should map to the same stripe")
	}
}

func TestLockForSpreadsAcrossStripes(t *testing.T) {
	m := &SessionManager{}

	ids := []string{"a", "b", "c", "d", "session-1", "session-2", "session-3", "session-4"}
	seen := make(map[interface{}]bool)
	for _, id := range ids {
		seen[m.lockFor(id)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected session ids to spread over multiple stripes")
	}
}

func TestNextPairTimestamps(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		last     time.Time
		now      time.Time
		wantUser time.Time
	}{
		{"empty session uses the clock", time.Time{}, base, base},
		{"clock past last message uses the clock", base, base.Add(time.Second), base.Add(time.Second)},
		{"clock equal to last message clamps forward", base, base, base.Add(time.Microsecond)},
		{"clock behind last message clamps forward", base, base.Add(-time.Second), base.Add(time.Microsecond)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userTS, assistantTS := nextPairTimestamps(tc.last, tc.now)
			if !userTS.Equal(tc.wantUser) {
				t.Fatalf("user timestamp = %v, want %v", userTS, tc.wantUser)
			}
			if !userTS.After(tc.last) {
				t.Fatalf("user timestamp %v must be after last %v", userTS, tc.last)
			}
			if !assistantTS.After(userTS) {
				t.Fatalf("assistant timestamp %v must be after user %v", assistantTS, userTS)
			}
		})
	}
}

func TestNextPairTimestampsMonotonicUnderStalledClock(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// the wall clock never advances; each pair must still land strictly
	// after the previous one
	last := time.Time{}
	for i := 0; i < 10; i++ {
		userTS, assistantTS := nextPairTimestamps(last, now)
		if !userTS.After(last) {
			t.Fatalf("pair %d: user timestamp %v not after previous %v", i, userTS, last)
		}
		if !assistantTS.After(userTS) {
			t.Fatalf("pair %d: assistant timestamp %v not after user %v", i, assistantTS, userTS)
		}
		last = assistantTS
	}
}

func TestEnsureOwnedRejectsMalformedID(t *testing.T) {
	m := &SessionManager{}

	cases := []string{
		"not-a-uuid",
		strings.Repeat("f", 100),
		"8b9f3a1e-0000-4000-8000-00000000000", // one hex digit short
		"'; DROP TABLE chat_sessions; --",
	}
	for _, id := range cases {
		if err := m.EnsureOwned(context.Background(), id, 1); !errors.Is(err, ErrInvalidSessionID) {
			t.Fatalf("id %q: expected ErrInvalidSessionID, got %v", id, err)
		}
	}
}
