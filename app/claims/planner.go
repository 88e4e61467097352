package claims

import (
	"time"
)

type Planner struct {
	policy SchedulePolicy
	loc    *time.Location
}

func NewPlanner(policy SchedulePolicy, loc *time.Location) *Planner {
	return &Planner{policy: policy, loc: loc}
}

func (p *Planner) Policy() SchedulePolicy {
	return p.policy
}

// Schedule returns the complete check plan for a promise deadline counted
// from start:
//   - long windows: every CadenceDays, then the deadline
//   - short windows: the deadline only
//   - otherwise: the midpoint, then the deadline
func (p *Planner) Schedule(start, deadline time.Time) []time.Time {
	start = DateOnly(start, p.loc)
	deadline = DateOnly(deadline, p.loc)
	window := daysBetween(start, deadline)

	var schedule []time.Time
	switch {
	case window > p.policy.LongWindowDays:
		for step := start.AddDate(0, 0, p.policy.CadenceDays); step.Before(deadline); step = step.AddDate(0, 0, p.policy.CadenceDays) {
			schedule = append(schedule, step)
		}
		schedule = append(schedule, deadline)
		if n := len(schedule); n > 2 && daysBetween(schedule[n-2], schedule[n-1]) < p.policy.MergeTailDays {
			schedule = append(schedule[:n-2], schedule[n-1])
		}
	case window <= p.policy.ShortWindowDays:
		schedule = append(schedule, deadline)
	default:
		midpoint := start.AddDate(0, 0, window/2)
		if midpoint.Before(deadline) {
			schedule = append(schedule, midpoint)
		}
		schedule = append(schedule, deadline)
	}

	return schedule
}

// Plan returns the checks still worth creating for a claim as of today.
// start is the article date. A promise whose deadline already passed gets a
// single check today; goals and statements flagged for follow-up get one
// initial check, never before today.
func (p *Planner) Plan(claim Claim, start, today time.Time) []time.Time {
	today = DateOnly(today, p.loc)

	switch claim.Type {
	case TypePromise:
		if claim.CompletionConditionDate == nil {
			return nil
		}
		deadline := DateOnly(*claim.CompletionConditionDate, p.loc)
		if deadline.Before(today) {
			return []time.Time{today}
		}
		var remaining []time.Time
		for _, d := range p.Schedule(start, deadline) {
			if !d.Before(today) {
				remaining = append(remaining, d)
			}
		}
		return remaining
	case TypeGoal:
		if !claim.FollowUpWorthy {
			return nil
		}
		return []time.Time{p.notBefore(DateOnly(start, p.loc).AddDate(0, 0, p.policy.GoalFirstCheckDays), today)}
	case TypeStatement:
		if !claim.FollowUpWorthy {
			return nil
		}
		return []time.Time{p.notBefore(DateOnly(start, p.loc).AddDate(0, 0, p.policy.StatementFirstCheckDays), today)}
	}
	return nil
}

// NeedsAutoplan reports whether a promise has run out of scheduled checks:
// nothing open from today on, the deadline not yet covered by any check and
// no terminal verdict.
func (p *Planner) NeedsAutoplan(claim Claim, followups []Followup, terminal bool, today time.Time) bool {
	if claim.Type != TypePromise || claim.CompletionConditionDate == nil || terminal {
		return false
	}
	today = DateOnly(today, p.loc)
	deadline := DateOnly(*claim.CompletionConditionDate, p.loc)

	for _, f := range followups {
		if f.ClaimID != claim.ID || f.FollowUpDate == nil {
			continue
		}
		date := DateOnly(*f.FollowUpDate, p.loc)
		if f.IsOpen() && !date.Before(today) {
			return false
		}
		if !date.Before(deadline) {
			return false
		}
	}
	return true
}

func (p *Planner) notBefore(d, floor time.Time) time.Time {
	if d.Before(floor) {
		return floor
	}
	return d
}

// daysBetween counts civil days; both values are midnights in the same zone.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
