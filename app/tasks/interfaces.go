package tasks

import (
	"context"

	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/verifier"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to manage background processing.
// Example usage:
//
//	scheduler := NewScheduler(repos, planner, clock, verifierClient)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewPlanFollowupsTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	TriggerPlanning() error
}

// Verifier produces a verdict for one scheduled check.
type Verifier interface {
	Verify(ctx context.Context, req verifier.Request) (claims.Verification, error)
}

var _ Verifier = (*verifier.Client)(nil)
