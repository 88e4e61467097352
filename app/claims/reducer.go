package claims

import (
	"slices"
	"strings"
	"time"
)

// Reduce keeps, for every claim, the first record of an already sorted
// stream. It is a single pass; ordering is the caller's job.
func Reduce[T any](records []T, claimOf func(T) string) map[string]T {
	out := make(map[string]T)
	for _, r := range records {
		id := claimOf(r)
		if _, seen := out[id]; seen {
			continue
		}
		out[id] = r
	}
	return out
}

// SortUpdatesNewestFirst orders by created_at descending, then id descending.
// Updates without a readable timestamp are dropped.
func SortUpdatesNewestFirst(updates []Update) []Update {
	sorted := make([]Update, 0, len(updates))
	for _, u := range updates {
		if u.CreatedAt != nil {
			sorted = append(sorted, u)
		}
	}
	slices.SortFunc(sorted, func(a, b Update) int {
		if c := b.CreatedAt.Compare(*a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return sorted
}

// SortFollowupsOldestFirst orders by follow_up_date ascending, then id
// ascending. Followups without a readable date are dropped.
func SortFollowupsOldestFirst(followups []Followup) []Followup {
	sorted := make([]Followup, 0, len(followups))
	for _, f := range followups {
		if f.FollowUpDate != nil {
			sorted = append(sorted, f)
		}
	}
	slices.SortFunc(sorted, func(a, b Followup) int {
		if c := a.FollowUpDate.Compare(*b.FollowUpDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

func updateClaim(u Update) string     { return u.ClaimID }
func followupClaim(f Followup) string { return f.ClaimID }

// LatestUpdates maps every claim to its current verdict record.
func LatestUpdates(updates []Update) map[string]Update {
	return Reduce(SortUpdatesNewestFirst(updates), updateClaim)
}

// EarliestFollowups maps every claim to its first scheduled check, open or
// closed.
func EarliestFollowups(followups []Followup) map[string]Followup {
	return Reduce(SortFollowupsOldestFirst(followups), followupClaim)
}

// NextFollowups maps every claim to its earliest open check dated today or
// later.
func NextFollowups(followups []Followup, today time.Time) map[string]Followup {
	upcoming := make([]Followup, 0, len(followups))
	for _, f := range followups {
		if f.IsOpen() && f.FollowUpDate != nil && !f.FollowUpDate.Before(today) {
			upcoming = append(upcoming, f)
		}
	}
	return Reduce(SortFollowupsOldestFirst(upcoming), followupClaim)
}
