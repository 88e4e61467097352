package claims

import (
	"slices"
	"strings"
	"time"

	"github.com/lysyi3m/claim-tracker/app/verdict"
)

type EventKind string

const (
	EventArticle   EventKind = "article"
	EventUpdate    EventKind = "update"
	EventScheduled EventKind = "scheduled"
	EventDue       EventKind = "due"
)

// Tie order for events sharing a date.
var kindRank = map[EventKind]int{
	EventArticle:   0,
	EventUpdate:    1,
	EventScheduled: 2,
	EventDue:       3,
}

type Event struct {
	Kind EventKind
	Date time.Time
	ID   string

	// update events
	Verdict *verdict.Result
	Text    string
	Sources []string

	// scheduled events
	Overdue           bool
	Processed         bool
	ProcessedUpdateID string

	// Presentation hints for the two ends of the sequence.
	First bool
	Last  bool
}

type TimelineBuilder struct {
	loc      *time.Location
	resolver *DueDateResolver
}

func NewTimelineBuilder(loc *time.Location) *TimelineBuilder {
	return &TimelineBuilder{
		loc:      loc,
		resolver: NewDueDateResolver(loc),
	}
}

// Run merges everything known about one claim into a reverse chronological
// sequence. Records with unreadable dates and records of other claims are
// skipped. article may be nil.
func (b *TimelineBuilder) Run(claim Claim, article *Article, followups []Followup, updates []Update, now time.Time) []Event {
	today := Today(now, b.loc)
	events := make([]Event, 0, len(followups)+len(updates)+2)

	if article != nil && article.PublishDate != nil {
		events = append(events, Event{
			Kind: EventArticle,
			Date: DateOnly(*article.PublishDate, b.loc),
			ID:   article.ID,
		})
	}

	updateIDs := make(map[string]bool, len(updates))
	for _, u := range updates {
		if u.ClaimID != claim.ID || u.CreatedAt == nil {
			continue
		}
		updateIDs[u.ID] = true

		v := verdict.Normalize(u.Verdict)
		events = append(events, Event{
			Kind:    EventUpdate,
			Date:    *u.CreatedAt,
			ID:      u.ID,
			Verdict: &v,
			Text:    u.Output.Explanation(),
			Sources: u.Output.Sources,
		})
	}

	for _, f := range followups {
		if f.ClaimID != claim.ID || f.FollowUpDate == nil {
			continue
		}

		date := DateOnly(*f.FollowUpDate, b.loc)
		event := Event{
			Kind:      EventScheduled,
			Date:      date,
			ID:        f.ID,
			Processed: !f.IsOpen(),
			Overdue:   f.IsOpen() && date.Before(today),
		}
		// A reader can observe the close before the update is visible.
		if updateIDs[f.ProcessedUpdateID] {
			event.ProcessedUpdateID = f.ProcessedUpdateID
		}
		events = append(events, event)
	}

	if due, ok := b.resolver.Resolve(claim, followups); ok {
		events = append(events, Event{
			Kind: EventDue,
			Date: due,
			ID:   claim.ID,
		})
	}

	slices.SortFunc(events, func(a, b Event) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := kindRank[a.Kind] - kindRank[b.Kind]; c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if len(events) > 0 {
		events[0].First = true
		events[len(events)-1].Last = true
	}

	return events
}
