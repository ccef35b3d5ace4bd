package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kamaldev10/judi-guard-app/internal/classifier"
	"github.com/kamaldev10/judi-guard-app/internal/model"
	"github.com/kamaldev10/judi-guard-app/internal/youtube"
)

// Consumer-side contracts for the external collaborators and the store.
// Services depend on these rather than on concrete clients so the pipeline
// logic is testable without YouTube, the classifier or Postgres.

// FetchGateway retrieves video metadata and comment threads.
type FetchGateway interface {
	VideoTitle(ctx context.Context, videoID string) (string, error)
	ListCommentThreads(ctx context.Context, videoID string, pageSize, maxItems int) ([]youtube.CommentThread, error)
}

// ClassifierGateway classifies a single comment text.
type ClassifierGateway interface {
	Classify(ctx context.Context, text string) (*classifier.Result, error)
}

// RemediationGateway performs comment deletion/moderation and the live
// ownership lookups the decision rule needs.
type RemediationGateway interface {
	CommentAuthorChannel(ctx context.Context, commentID string) (string, error)
	AuthenticatedChannel(ctx context.Context) (string, error)
	DeleteComment(ctx context.Context, commentID string) error
	SetModerationStatus(ctx context.Context, commentID, status string) error
}

// JobStore persists analysis job records.
type JobStore interface {
	Create(ctx context.Context, job *model.AnalysisJob) error
	FindOwned(ctx context.Context, id uuid.UUID, userID string) (*model.AnalysisJob, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, title *string, fetched, analyzed int, completedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, fetched int, errMsg string, failedAt time.Time) error
	BeginBatch(ctx context.Context, id uuid.UUID, attemptAt time.Time) error
	FinishBatch(ctx context.Context, id uuid.UUID, status model.JobStatus, successes, failures int, finishedAt time.Time) error
}

// CommentStore persists analyzed comments and serves the dedup lookups.
type CommentStore interface {
	ExistingCommentIDs(ctx context.Context, commentIDs []string) (map[string]struct{}, error)
	Insert(ctx context.Context, c *model.AnalyzedComment) (inserted bool, err error)
	FindOwned(ctx context.Context, id int64, userID string) (*model.AnalyzedComment, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, label string) ([]model.AnalyzedComment, error)
	ListFlaggedPending(ctx context.Context, jobID uuid.UUID) ([]model.AnalyzedComment, error)
	RecordRemediation(ctx context.Context, id int64, deleted, moderated bool, attemptedAt time.Time) error
	RecordRemediationFailure(ctx context.Context, id int64, attemptedAt time.Time, reason string) error
}
