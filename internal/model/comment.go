package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Classification labels returned by the classifier service.
const (
	LabelJudi    = "JUDI"
	LabelNonJudi = "NON_JUDI"
)

// FlaggedLabel is the label that makes a comment eligible for remediation.
const FlaggedLabel = LabelJudi

// AnalyzedComment is one classified YouTube comment. Classification fields
// are immutable after creation; only the remediation fields change later.
// The row is never deleted, even after the comment is removed on YouTube;
// it stays as a historical record.
type AnalyzedComment struct {
	ID              int64     `json:"id"`
	JobID           uuid.UUID `json:"jobId"`
	UserID          string    `json:"-"`
	VideoID         string    `json:"videoId"`
	CommentID       string    `json:"commentId"`
	ParentCommentID *string   `json:"parentCommentId,omitempty"`
	AuthorChannelID string    `json:"authorChannelId"`
	TextDisplay     string    `json:"textDisplay"`
	TextOriginal    string    `json:"-"`
	AuthorName      string    `json:"authorName"`
	AuthorAvatarURL string    `json:"authorAvatarUrl,omitempty"`
	PublishedAt     time.Time `json:"publishedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	LikeCount       int       `json:"likeCount"`

	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	ModelVersion   string  `json:"modelVersion"`

	IsDeletedOnPlatform bool       `json:"isDeletedOnPlatform"`
	IsModerated         bool       `json:"isModerated"`
	DeletionAttemptedAt *time.Time `json:"deletionAttemptedAt,omitempty"`
	DeletionError       *string    `json:"deletionError,omitempty"`

	// RawPayload keeps the upstream comment thread resource for audit.
	RawPayload json.RawMessage `json:"-"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Flagged reports whether the comment is eligible for remediation.
func (c *AnalyzedComment) Flagged() bool {
	return c.Classification == FlaggedLabel
}

// Remediated reports whether the comment has already been acted on upstream.
func (c *AnalyzedComment) Remediated() bool {
	return c.IsDeletedOnPlatform || c.IsModerated
}
