package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus enumerates the lifecycle states of an analysis job.
// PROCESSING → COMPLETED | FAILED covers the ingest/classify phase; the
// DELETING_* / COMPLETED_*_DELETIONS* states are remediation sub-states that
// reuse the same record.
type JobStatus string

const (
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"

	StatusDeletingComments  JobStatus = "DELETING_CLASSIFIED_COMMENTS"
	StatusAllDeleted        JobStatus = "COMPLETED_ALL_DELETIONS_SUCCESSFULLY"
	StatusPartialDeleted    JobStatus = "COMPLETED_DELETION_WITH_PARTIAL_ERRORS"
	StatusAllDeletionFailed JobStatus = "FAILED_ALL_DELETIONS"
)

// AnalysisTerminal reports whether the ingest/classify phase of a job has
// reached a terminal state (batch remediation may still mutate the record).
func (s JobStatus) AnalysisTerminal() bool {
	return s != StatusProcessing
}

// AnalysisJob is one analysis run: ingest, classification and the most recent
// batch remediation attempt for a single video.
type AnalysisJob struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                string     `json:"userId"`
	VideoID               string     `json:"videoId"`
	VideoTitle            *string    `json:"videoTitle,omitempty"`
	Status                JobStatus  `json:"status"`
	TotalCommentsFetched  int        `json:"totalCommentsFetched"`
	TotalCommentsAnalyzed int        `json:"totalCommentsAnalyzed"`
	LastBatchSuccessCount int        `json:"lastBatchSuccessCount"`
	LastBatchFailureCount int        `json:"lastBatchFailureCount"`
	ProcessingStartedAt   time.Time  `json:"processingStartedAt"`
	CompletedAt           *time.Time `json:"completedAt,omitempty"`
	LastBatchAttemptAt    *time.Time `json:"lastBatchAttemptAt,omitempty"`
	ErrorMessage          *string    `json:"errorMessage,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// AnalyzeRequest is the API request body for starting an analysis.
type AnalyzeRequest struct {
	VideoURL string `json:"videoUrl"`
}

// RemediationFailure identifies one comment whose remediation failed, with a
// client-safe reason. Callers retry exactly this subset.
type RemediationFailure struct {
	CommentID string `json:"commentId"`
	Error     string `json:"error"`
}

// BatchRemediationSummary is the API response for a batch remediation run.
type BatchRemediationSummary struct {
	TotalTargeted       int                  `json:"totalTargeted"`
	SuccessfullyDeleted int                  `json:"successfullyDeleted"`
	FailedToDelete      int                  `json:"failedToDelete"`
	Failures            []RemediationFailure `json:"failures"`
}

// StatsResponse is the API response for global statistics.
type StatsResponse struct {
	TotalJobs            int            `json:"totalJobs"`
	TotalCommentsStored  int            `json:"totalCommentsStored"`
	TotalFlaggedComments int            `json:"totalFlaggedComments"`
	TotalRemediated      int            `json:"totalRemediated"`
	JobsByStatus         map[string]int `json:"jobsByStatus"`
}
