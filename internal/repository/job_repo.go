package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kamaldev10/judi-guard-app/internal/model"
)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

const jobColumns = `
	id, user_id, video_id, video_title, status,
	total_comments_fetched, total_comments_analyzed,
	last_batch_success_count, last_batch_failure_count,
	processing_started_at, completed_at, last_batch_attempt_at,
	error_message, created_at`

// Create inserts a new job row. The row exists before any external call is
// made so every failure is attributable to a persisted record.
func (r *JobRepo) Create(ctx context.Context, job *model.AnalysisJob) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO analysis_jobs
			(id, user_id, video_id, status, processing_started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		job.ID, job.UserID, job.VideoID, job.Status, job.ProcessingStartedAt)
	return err
}

// FindOwned returns the job only if it belongs to the given user.
// Returns pgx.ErrNoRows otherwise.
func (r *JobRepo) FindOwned(ctx context.Context, id uuid.UUID, userID string) (*model.AnalysisJob, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM analysis_jobs
		WHERE id = $1 AND user_id = $2`, id, userID)

	var j model.AnalysisJob
	err := row.Scan(
		&j.ID, &j.UserID, &j.VideoID, &j.VideoTitle, &j.Status,
		&j.TotalCommentsFetched, &j.TotalCommentsAnalyzed,
		&j.LastBatchSuccessCount, &j.LastBatchFailureCount,
		&j.ProcessingStartedAt, &j.CompletedAt, &j.LastBatchAttemptAt,
		&j.ErrorMessage, &j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// MarkCompleted finalizes the ingest/classify phase.
func (r *JobRepo) MarkCompleted(ctx context.Context, id uuid.UUID, title *string, fetched, analyzed int, completedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE analysis_jobs
		SET status = $2, video_title = COALESCE($3, video_title),
		    total_comments_fetched = $4, total_comments_analyzed = $5,
		    completed_at = $6, error_message = NULL
		WHERE id = $1`,
		id, model.StatusCompleted, title, fetched, analyzed, completedAt)
	return err
}

// MarkFailed records a terminal analysis failure. The error message is
// persisted before the error surfaces to the caller, so job history always
// reflects the last known state.
func (r *JobRepo) MarkFailed(ctx context.Context, id uuid.UUID, fetched int, errMsg string, failedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE analysis_jobs
		SET status = $2, total_comments_fetched = $3,
		    error_message = $4, completed_at = $5
		WHERE id = $1`,
		id, model.StatusFailed, fetched, errMsg, failedAt)
	return err
}

// BeginBatch transitions the job into the batch remediation sub-state and
// stamps the attempt time. A prior analysis failure message is cleared: the
// in-flight batch state is not a failure state, and error_message is non-null
// only on failure states.
func (r *JobRepo) BeginBatch(ctx context.Context, id uuid.UUID, attemptAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE analysis_jobs
		SET status = $2, last_batch_attempt_at = $3, error_message = NULL
		WHERE id = $1`,
		id, model.StatusDeletingComments, attemptAt)
	return err
}

// FinishBatch records the aggregate outcome of one batch remediation run.
// error_message is set only when every attempt failed; per-comment reasons
// live in deletion_error.
func (r *JobRepo) FinishBatch(ctx context.Context, id uuid.UUID, status model.JobStatus, successes, failures int, finishedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE analysis_jobs
		SET status = $2, last_batch_success_count = $3,
		    last_batch_failure_count = $4, completed_at = $5,
		    error_message = CASE WHEN $3 = 0 AND $4 > 0
		        THEN 'every remediation attempt in the last batch failed'
		        ELSE NULL END
		WHERE id = $1`,
		id, status, successes, failures, finishedAt)
	return err
}

// FailStuck marks jobs that stayed in PROCESSING past the deadline as FAILED
// so clients never poll an abandoned run forever. Returns the number of rows
// updated.
func (r *JobRepo) FailStuck(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE analysis_jobs
		SET status = $1, completed_at = NOW(),
		    error_message = 'analysis did not finish within the processing deadline'
		WHERE status = $2 AND processing_started_at < NOW() - $3::interval`,
		model.StatusFailed, model.StatusProcessing, olderThan.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetStats returns aggregate counters for the stats endpoint.
func (r *JobRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	stats := &model.StatsResponse{JobsByStatus: make(map[string]int)}

	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM analysis_jobs),
			(SELECT COUNT(*) FROM analyzed_comments),
			(SELECT COUNT(*) FROM analyzed_comments WHERE classification = $1),
			(SELECT COUNT(*) FROM analyzed_comments WHERE is_deleted_on_platform OR is_moderated)`,
		model.FlaggedLabel).Scan(
		&stats.TotalJobs, &stats.TotalCommentsStored,
		&stats.TotalFlaggedComments, &stats.TotalRemediated)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM analysis_jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.JobsByStatus[status] = count
	}
	return stats, rows.Err()
}
