package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/kamaldev10/judi-guard-app/internal/apperr"
	"github.com/kamaldev10/judi-guard-app/internal/model"
)

// Remediator is the per-comment decision engine the batch coordinator fans
// out over.
type Remediator interface {
	Remediate(ctx context.Context, userID string, analyzedCommentID int64, upstreamCommentID string) (*model.AnalyzedComment, error)
}

// BatchRemediationService fans the decision engine out over every flagged,
// not-yet-deleted comment of a job and aggregates the outcome onto the job
// record.
type BatchRemediationService struct {
	jobs        JobStore
	comments    CommentStore
	engine      Remediator
	concurrency int
}

func NewBatchRemediationService(jobs JobStore, comments CommentStore, engine Remediator, concurrency int) *BatchRemediationService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BatchRemediationService{
		jobs:        jobs,
		comments:    comments,
		engine:      engine,
		concurrency: concurrency,
	}
}

// Run remediates every eligible comment of the job. One comment's failure
// never aborts or blocks another's; each outcome is collected independently
// and the failures list lets callers retry exactly the failed subset.
//
// An empty target set returns a zero summary without touching job status.
func (s *BatchRemediationService) Run(ctx context.Context, userID string, jobID uuid.UUID) (*model.BatchRemediationSummary, error) {
	job, err := s.jobs.FindOwned(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("analysis job not found")
		}
		return nil, apperr.Internal("failed to load analysis job", err)
	}

	targets, err := s.comments.ListFlaggedPending(ctx, job.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list flagged comments", err)
	}
	if len(targets) == 0 {
		return &model.BatchRemediationSummary{Failures: []model.RemediationFailure{}}, nil
	}

	attemptAt := time.Now().UTC()
	if err := s.jobs.BeginBatch(ctx, job.ID, attemptAt); err != nil {
		return nil, apperr.Internal("failed to start batch remediation", err)
	}

	// Per-item isolation: every target gets its own outcome slot and the
	// goroutines never return an error to the group.
	itemErrs := make([]error, len(targets))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, target := range targets {
		g.Go(func() error {
			_, err := s.engine.Remediate(gCtx, userID, target.ID, target.CommentID)
			itemErrs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	summary := &model.BatchRemediationSummary{
		TotalTargeted: len(targets),
		Failures:      []model.RemediationFailure{},
	}
	for i, err := range itemErrs {
		if err == nil {
			summary.SuccessfullyDeleted++
			continue
		}
		summary.FailedToDelete++
		summary.Failures = append(summary.Failures, model.RemediationFailure{
			CommentID: targets[i].CommentID,
			Error:     apperr.MessageOf(err),
		})
	}

	status := batchStatus(summary.SuccessfullyDeleted, summary.FailedToDelete)
	if err := s.jobs.FinishBatch(ctx, job.ID, status, summary.SuccessfullyDeleted, summary.FailedToDelete, time.Now().UTC()); err != nil {
		return nil, apperr.Internal("failed to record batch remediation outcome", err)
	}

	log.Printf("batch remediation %s: %d targeted, %d succeeded, %d failed (%s)",
		job.ID, summary.TotalTargeted, summary.SuccessfullyDeleted, summary.FailedToDelete, status)
	return summary, nil
}

func batchStatus(successes, failures int) model.JobStatus {
	switch {
	case failures == 0:
		return model.StatusAllDeleted
	case successes == 0:
		return model.StatusAllDeletionFailed
	default:
		return model.StatusPartialDeleted
	}
}
