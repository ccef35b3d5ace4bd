package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kamaldev10/judi-guard-app/internal/apperr"
	"github.com/kamaldev10/judi-guard-app/internal/model"
	"github.com/kamaldev10/judi-guard-app/internal/youtube"
)

// RemediationService decides and executes delete-vs-moderate for a single
// flagged comment, and records the outcome on the stored record.
type RemediationService struct {
	comments CommentStore
	gateway  RemediationGateway
}

func NewRemediationService(comments CommentStore, gateway RemediationGateway) *RemediationService {
	return &RemediationService{comments: comments, gateway: gateway}
}

// Remediate acts on one analyzed comment. The decision rule: a comment the
// authenticated user authored is deleted permanently; anyone else's comment
// can only be hidden as spam (YouTube lets video owners moderate, not delete,
// other people's comments). Ownership is compared live against the platform,
// never from cached data.
//
// Already-remediated comments are an idempotent no-op returning the record
// unchanged.
func (s *RemediationService) Remediate(ctx context.Context, userID string, analyzedCommentID int64, upstreamCommentID string) (*model.AnalyzedComment, error) {
	if userID == "" {
		return nil, apperr.Invalid("user id is required")
	}
	if err := youtube.ValidateCommentID(upstreamCommentID); err != nil {
		return nil, apperr.Invalid("commentId is not a valid YouTube comment id")
	}

	rec, err := s.comments.FindOwned(ctx, analyzedCommentID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("analyzed comment not found")
		}
		return nil, apperr.Internal("failed to load analyzed comment", err)
	}
	if rec.CommentID != upstreamCommentID {
		return nil, apperr.Invalid("commentId does not match the analyzed comment")
	}

	if rec.Remediated() {
		return rec, nil
	}

	authorChannel, err := s.gateway.CommentAuthorChannel(ctx, rec.CommentID)
	if err != nil {
		return nil, s.recordFailure(ctx, rec, err)
	}
	ownChannel, err := s.gateway.AuthenticatedChannel(ctx)
	if err != nil {
		return nil, s.recordFailure(ctx, rec, err)
	}

	deleteOwn := authorChannel == ownChannel
	if deleteOwn {
		err = s.gateway.DeleteComment(ctx, rec.CommentID)
	} else {
		err = s.gateway.SetModerationStatus(ctx, rec.CommentID, youtube.ModerationStatusRejected)
	}
	if err != nil {
		return nil, s.recordFailure(ctx, rec, err)
	}

	attemptedAt := time.Now().UTC()
	if err := s.comments.RecordRemediation(ctx, rec.ID, deleteOwn, !deleteOwn, attemptedAt); err != nil {
		return nil, apperr.Internal("remediation succeeded upstream but could not be recorded", err)
	}

	rec.IsDeletedOnPlatform = deleteOwn
	rec.IsModerated = !deleteOwn
	rec.DeletionAttemptedAt = &attemptedAt
	rec.DeletionError = nil
	log.Printf("remediation: comment %s %s", rec.CommentID, actionName(deleteOwn))
	return rec, nil
}

func actionName(deleted bool) string {
	if deleted {
		return "deleted"
	}
	return "moderated"
}

// recordFailure stamps the failed attempt on the record, then returns the
// classified error. The record keeps both remediation flags false so the
// comment stays in the retry set.
func (s *RemediationService) recordFailure(ctx context.Context, rec *model.AnalyzedComment, cause error) error {
	classified := classifyGatewayError(cause)

	attemptedAt := time.Now().UTC()
	if err := s.comments.RecordRemediationFailure(ctx, rec.ID, attemptedAt, classified.Message); err != nil {
		log.Printf("remediation: could not record failure for comment %s: %v", rec.CommentID, err)
	}

	rec.DeletionAttemptedAt = &attemptedAt
	msg := classified.Message
	rec.DeletionError = &msg
	return classified
}

// classifyGatewayError translates the gateway's structured reason codes into
// the application taxonomy. The table keys on reason codes, never on error
// message text.
func classifyGatewayError(err error) *apperr.Error {
	var apiErr *youtube.APIError
	if !errors.As(err, &apiErr) {
		return apperr.Upstream("YouTube request failed", err)
	}

	switch {
	case apiErr.StatusCode == 400:
		return apperr.Invalid("YouTube rejected the request as malformed")
	case apiErr.Reason == youtube.ReasonCommentNotFound:
		return apperr.NotFound("comment no longer exists on YouTube")
	case apiErr.Reason == youtube.ReasonNotCommentOwner:
		return apperr.Forbidden("you are not the comment's author; it will be hidden instead of permanently deleted")
	case apiErr.Reason == youtube.ReasonNotVideoModerator:
		return apperr.Forbidden("you can only moderate comments on videos you own")
	case apiErr.StatusCode == 403:
		return apperr.Forbidden("YouTube denied permission for this action")
	default:
		return apperr.Upstream("YouTube request failed", err)
	}
}
