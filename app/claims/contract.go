package claims

import (
	"context"
	"errors"
	"time"
)

var (
	ErrFollowupClosed   = errors.New("followup already processed")
	ErrFollowupNotFound = errors.New("followup not found")
)

// Verification is the outcome a worker reports for one followup.
type Verification struct {
	Verdict string
	Output  ModelOutput
}

type Closure struct {
	Followup Followup
	Update   Update
	Next     *Followup // opened from the suggested date, nil when none or duplicate
}

// FollowupCloser closes an open followup. Implementations must, as one
// atomic step, flip processed_at from null, insert exactly one update, record
// its id on the followup and open a new followup for a suggested next date.
// Closing a closed followup returns ErrFollowupClosed and changes nothing.
type FollowupCloser interface {
	CloseFollowup(ctx context.Context, followupID string, v Verification, at time.Time) (*Closure, error)
}
