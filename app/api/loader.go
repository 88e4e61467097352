package api

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/database"
)

// snapshot is everything a projection reads.
type snapshot struct {
	claims    []claims.Claim
	followups []claims.Followup
	updates   []claims.Update
}

// load reads the three collections concurrently. filter.IDs narrows
// followups and updates to the same claims.
func (h *Handler) load(ctx context.Context, filter database.ClaimFilter) (*snapshot, error) {
	var snap snapshot
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := h.repos.Claims.ListClaims(gCtx, filter)
		if err != nil {
			return fmt.Errorf("failed to load claims: %w", err)
		}
		snap.claims = list
		return nil
	})

	g.Go(func() error {
		list, err := h.repos.Followups.ListFollowups(gCtx, database.FollowupFilter{ClaimIDs: filter.IDs})
		if err != nil {
			return fmt.Errorf("failed to load followups: %w", err)
		}
		snap.followups = list
		return nil
	})

	g.Go(func() error {
		list, err := h.repos.Updates.ListUpdates(gCtx, filter.IDs)
		if err != nil {
			return fmt.Errorf("failed to load updates: %w", err)
		}
		snap.updates = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &snap, nil
}
