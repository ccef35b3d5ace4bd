package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kamaldev10/judi-guard-app/internal/model"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

const commentColumns = `
	id, job_id, user_id, video_id, comment_id, parent_comment_id,
	author_channel_id, text_display, text_original, author_name,
	author_avatar_url, published_at, updated_at, like_count,
	classification, confidence, model_version,
	is_deleted_on_platform, is_moderated, deletion_attempted_at,
	deletion_error, raw_payload, created_at`

func scanComment(row interface{ Scan(...any) error }) (*model.AnalyzedComment, error) {
	var c model.AnalyzedComment
	err := row.Scan(
		&c.ID, &c.JobID, &c.UserID, &c.VideoID, &c.CommentID, &c.ParentCommentID,
		&c.AuthorChannelID, &c.TextDisplay, &c.TextOriginal, &c.AuthorName,
		&c.AuthorAvatarURL, &c.PublishedAt, &c.UpdatedAt, &c.LikeCount,
		&c.Classification, &c.Confidence, &c.ModelVersion,
		&c.IsDeletedOnPlatform, &c.IsModerated, &c.DeletionAttemptedAt,
		&c.DeletionError, &c.RawPayload, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ExistingCommentIDs returns which of the given upstream comment ids are
// already stored. The unique constraint on comment_id is the dedup key: a
// comment present here is never reclassified by a later job.
func (r *CommentRepo) ExistingCommentIDs(ctx context.Context, commentIDs []string) (map[string]struct{}, error) {
	if len(commentIDs) == 0 {
		return map[string]struct{}{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT comment_id FROM analyzed_comments WHERE comment_id = ANY($1)`,
		commentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = struct{}{}
	}
	return existing, rows.Err()
}

// Insert stores a newly classified comment. A duplicate comment_id means a
// concurrent job already classified it; that is reported as inserted=false,
// never as an error.
func (r *CommentRepo) Insert(ctx context.Context, c *model.AnalyzedComment) (inserted bool, err error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO analyzed_comments
			(job_id, user_id, video_id, comment_id, parent_comment_id,
			 author_channel_id, text_display, text_original, author_name,
			 author_avatar_url, published_at, updated_at, like_count,
			 classification, confidence, model_version, raw_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		ON CONFLICT (comment_id) DO NOTHING`,
		c.JobID, c.UserID, c.VideoID, c.CommentID, c.ParentCommentID,
		c.AuthorChannelID, c.TextDisplay, c.TextOriginal, c.AuthorName,
		c.AuthorAvatarURL, c.PublishedAt, c.UpdatedAt, c.LikeCount,
		c.Classification, c.Confidence, c.ModelVersion, c.RawPayload)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FindOwned returns the analyzed comment only if it belongs to the user.
func (r *CommentRepo) FindOwned(ctx context.Context, id int64, userID string) (*model.AnalyzedComment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM analyzed_comments
		WHERE id = $1 AND user_id = $2`, id, userID)
	return scanComment(row)
}

// ListByJob returns a job's comments sorted by publish time ascending,
// optionally filtered by classification label.
func (r *CommentRepo) ListByJob(ctx context.Context, jobID uuid.UUID, label string) ([]model.AnalyzedComment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM analyzed_comments
		WHERE job_id = $1`
	args := []any{jobID}
	if label != "" {
		query += ` AND classification = $2`
		args = append(args, label)
	}
	query += ` ORDER BY published_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.AnalyzedComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// ListFlaggedPending returns the batch remediation target set: flagged
// comments not yet deleted upstream, in publish order.
func (r *CommentRepo) ListFlaggedPending(ctx context.Context, jobID uuid.UUID) ([]model.AnalyzedComment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+commentColumns+`
		FROM analyzed_comments
		WHERE job_id = $1 AND classification = $2 AND is_deleted_on_platform = false
		ORDER BY published_at ASC`,
		jobID, model.FlaggedLabel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.AnalyzedComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// RecordRemediation marks a successful remediation. Exactly one of the two
// flags is set; a previous failure's deletion_error is cleared.
func (r *CommentRepo) RecordRemediation(ctx context.Context, id int64, deleted, moderated bool, attemptedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE analyzed_comments
		SET is_deleted_on_platform = $2, is_moderated = $3,
		    deletion_attempted_at = $4, deletion_error = NULL
		WHERE id = $1`,
		id, deleted, moderated, attemptedAt)
	return err
}

// RecordRemediationFailure records a failed attempt without touching the
// classification fields.
func (r *CommentRepo) RecordRemediationFailure(ctx context.Context, id int64, attemptedAt time.Time, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE analyzed_comments
		SET is_deleted_on_platform = false, is_moderated = false,
		    deletion_attempted_at = $2, deletion_error = $3
		WHERE id = $1`,
		id, attemptedAt, reason)
	return err
}
