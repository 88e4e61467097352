package claims

import "time"

type DueDateResolver struct {
	loc *time.Location
}

func NewDueDateResolver(loc *time.Location) *DueDateResolver {
	return &DueDateResolver{loc: loc}
}

// Resolve picks the explicit deadline, else the earliest followup of the
// claim. ok is false when neither exists.
func (r *DueDateResolver) Resolve(claim Claim, followups []Followup) (time.Time, bool) {
	own := make([]Followup, 0, len(followups))
	for _, f := range followups {
		if f.ClaimID == claim.ID {
			own = append(own, f)
		}
	}
	return r.resolve(claim, EarliestFollowups(own))
}

// ResolveAll resolves every claim in one pass over the followups. Claims
// without a due date are absent from the result.
func (r *DueDateResolver) ResolveAll(claims []Claim, followups []Followup) map[string]time.Time {
	earliest := EarliestFollowups(followups)

	out := make(map[string]time.Time, len(claims))
	for _, c := range claims {
		if due, ok := r.resolve(c, earliest); ok {
			out[c.ID] = due
		}
	}
	return out
}

func (r *DueDateResolver) resolve(claim Claim, earliest map[string]Followup) (time.Time, bool) {
	if claim.CompletionConditionDate != nil {
		return DateOnly(*claim.CompletionConditionDate, r.loc), true
	}
	if f, ok := earliest[claim.ID]; ok {
		return DateOnly(*f.FollowUpDate, r.loc), true
	}
	return time.Time{}, false
}
