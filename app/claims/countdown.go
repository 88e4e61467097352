package claims

import (
	"slices"
	"strings"
	"time"

	"github.com/lysyi3m/claim-tracker/app/verdict"
)

type CountdownEntry struct {
	Claim        Claim
	DueDate      time.Time
	EventAt      time.Time // latest update, or the due date when there is none
	LatestUpdate *Update
	Verdict      *verdict.Result
	NextCheck    *time.Time
}

type Countdown struct {
	Upcoming []CountdownEntry
	Past     []CountdownEntry
}

type Partitioner struct {
	loc      *time.Location
	resolver *DueDateResolver
}

func NewPartitioner(loc *time.Location) *Partitioner {
	return &Partitioner{
		loc:      loc,
		resolver: NewDueDateResolver(loc),
	}
}

// Run splits promises and goals into upcoming and past. A claim is past once
// its due date is reached or once any verdict exists for it. Statements and
// claims without a due date are left out.
func (p *Partitioner) Run(claims []Claim, followups []Followup, updates []Update, now time.Time) Countdown {
	tracked := make([]Claim, 0, len(claims))
	for _, c := range claims {
		if c.Type == TypePromise || c.Type == TypeGoal {
			tracked = append(tracked, c)
		}
	}

	dueDates := p.resolver.ResolveAll(tracked, followups)
	latest := LatestUpdates(updates)
	next := NextFollowups(followups, Today(now, p.loc))

	result := Countdown{
		Upcoming: []CountdownEntry{},
		Past:     []CountdownEntry{},
	}

	for _, c := range tracked {
		due, ok := dueDates[c.ID]
		if !ok {
			continue
		}

		entry := CountdownEntry{
			Claim:   c,
			DueDate: due,
			EventAt: due,
		}
		if f, ok := next[c.ID]; ok {
			date := *f.FollowUpDate
			entry.NextCheck = &date
		}

		u, hasUpdate := latest[c.ID]
		if hasUpdate {
			entry.LatestUpdate = &u
			entry.EventAt = *u.CreatedAt
			v := verdict.Normalize(u.Verdict)
			entry.Verdict = &v
		}

		if hasUpdate || !due.After(now) {
			result.Past = append(result.Past, entry)
		} else {
			result.Upcoming = append(result.Upcoming, entry)
		}
	}

	slices.SortFunc(result.Upcoming, func(a, b CountdownEntry) int {
		if c := typeRank(a.Claim.Type) - typeRank(b.Claim.Type); c != 0 {
			return c
		}
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		return strings.Compare(a.Claim.ID, b.Claim.ID)
	})

	slices.SortFunc(result.Past, func(a, b CountdownEntry) int {
		if c := typeRank(a.Claim.Type) - typeRank(b.Claim.Type); c != 0 {
			return c
		}
		if c := b.EventAt.Compare(a.EventAt); c != 0 {
			return c
		}
		return strings.Compare(a.Claim.ID, b.Claim.ID)
	})

	return result
}

func typeRank(t ClaimType) int {
	switch t {
	case TypePromise:
		return 0
	case TypeGoal:
		return 1
	default:
		return 2
	}
}
