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
	"github.com/kamaldev10/judi-guard-app/internal/youtube"
)

// AnalysisService drives one analysis run:
// fetch → validate → dedup → classify → persist → finalize.
type AnalysisService struct {
	jobs        JobStore
	comments    CommentStore
	fetcher     FetchGateway
	clf         ClassifierGateway
	maxComments int
	pageSize    int
	concurrency int
}

func NewAnalysisService(jobs JobStore, comments CommentStore, fetcher FetchGateway, clf ClassifierGateway, maxComments, pageSize, concurrency int) *AnalysisService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &AnalysisService{
		jobs:        jobs,
		comments:    comments,
		fetcher:     fetcher,
		clf:         clf,
		maxComments: maxComments,
		pageSize:    pageSize,
		concurrency: concurrency,
	}
}

// classifyOutcome pairs one comment with its classification result or error,
// so a failed call can never silently drop the comment from accounting.
type classifyOutcome struct {
	thread youtube.CommentThread
	result *classifierResult
	err    error
}

type classifierResult struct {
	label        string
	confidence   float64
	modelVersion string
}

// Run executes one analysis job for the user's video. The job row is created
// before any external call; on unrecoverable errors the row is marked FAILED
// before the error is returned.
func (s *AnalysisService) Run(ctx context.Context, userID, videoURL string) (*model.AnalysisJob, error) {
	videoID, err := youtube.ParseVideoID(videoURL)
	if err != nil {
		return nil, apperr.Invalid("videoUrl is not a valid YouTube video URL")
	}

	now := time.Now().UTC()
	job := &model.AnalysisJob{
		ID:                  uuid.New(),
		UserID:              userID,
		VideoID:             videoID,
		Status:              model.StatusProcessing,
		ProcessingStartedAt: now,
		CreatedAt:           now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperr.Internal("failed to create analysis job", err)
	}

	title, err := s.fetcher.VideoTitle(ctx, videoID)
	if err != nil {
		return nil, s.fail(ctx, job, "failed to fetch video metadata", err)
	}
	job.VideoTitle = &title

	threads, err := s.fetcher.ListCommentThreads(ctx, videoID, s.pageSize, s.maxComments)
	if err != nil {
		return nil, s.fail(ctx, job, "failed to fetch comments", err)
	}
	job.TotalCommentsFetched = len(threads)

	// Zero comments is a successful run, not an error.
	if len(threads) == 0 {
		return s.complete(ctx, job, 0)
	}

	candidates := s.validateThreads(job, threads)

	fresh, err := s.dedup(ctx, job, candidates)
	if err != nil {
		return nil, s.fail(ctx, job, "failed to check for previously analyzed comments", err)
	}
	if len(fresh) == 0 {
		return s.complete(ctx, job, 0)
	}

	outcomes := s.classifyAll(ctx, fresh)

	// Only a total classifier outage fails the job; individual failures drop
	// the comment with a warning and show up as analyzed < fetched.
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
		}
	}
	if failed == len(outcomes) {
		return nil, s.fail(ctx, job, "classifier rejected every comment in the batch", outcomes[0].err)
	}

	analyzed := s.persist(ctx, job, outcomes)
	return s.complete(ctx, job, analyzed)
}

// validateThreads drops structurally invalid entries (bad comment id prefix,
// missing author channel) with a warning. Invalid entries never fail the job.
func (s *AnalysisService) validateThreads(job *model.AnalysisJob, threads []youtube.CommentThread) []youtube.CommentThread {
	valid := make([]youtube.CommentThread, 0, len(threads))
	for _, t := range threads {
		if err := youtube.ValidateCommentID(t.CommentID); err != nil {
			log.Printf("analysis %s: dropping comment with malformed id %q: %v", job.ID, t.CommentID, err)
			continue
		}
		if err := youtube.ValidateChannelID(t.AuthorChannelID); err != nil {
			log.Printf("analysis %s: dropping comment %s: bad author channel id %q: %v", job.ID, t.CommentID, t.AuthorChannelID, err)
			continue
		}
		valid = append(valid, t)
	}
	return valid
}

// dedup filters out comments already present in the store. A previously
// classified comment is never reclassified and never recounted, which makes
// re-running a video idempotent with respect to classification cost.
func (s *AnalysisService) dedup(ctx context.Context, job *model.AnalysisJob, candidates []youtube.CommentThread) ([]youtube.CommentThread, error) {
	ids := make([]string, len(candidates))
	for i, t := range candidates {
		ids[i] = t.CommentID
	}

	existing, err := s.comments.ExistingCommentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	fresh := make([]youtube.CommentThread, 0, len(candidates))
	for _, t := range candidates {
		if _, ok := existing[t.CommentID]; ok {
			continue
		}
		fresh = append(fresh, t)
	}
	if skipped := len(candidates) - len(fresh); skipped > 0 {
		log.Printf("analysis %s: %d comments already classified, skipping", job.ID, skipped)
	}
	return fresh, nil
}

// classifyAll fans out one classifier call per comment with bounded
// concurrency. Every comment gets an outcome slot; goroutines record their
// result or error positionally and never abort the group.
func (s *AnalysisService) classifyAll(ctx context.Context, threads []youtube.CommentThread) []classifyOutcome {
	outcomes := make([]classifyOutcome, len(threads))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, t := range threads {
		outcomes[i].thread = t
		g.Go(func() error {
			res, err := s.clf.Classify(gCtx, t.TextOriginal)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].result = &classifierResult{
				label:        res.Label,
				confidence:   res.Confidence,
				modelVersion: res.ModelVersion,
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// persist writes one AnalyzedComment per successful classification. Per-item
// persistence failures are counted and logged but never abort the batch; a
// duplicate-key conflict means a concurrent job got there first and is
// treated as already classified.
func (s *AnalysisService) persist(ctx context.Context, job *model.AnalysisJob, outcomes []classifyOutcome) int {
	analyzed := 0
	for _, o := range outcomes {
		if o.err != nil {
			log.Printf("analysis %s: classification failed for comment %s: %v", job.ID, o.thread.CommentID, o.err)
			continue
		}

		t := o.thread
		rec := &model.AnalyzedComment{
			JobID:           job.ID,
			UserID:          job.UserID,
			VideoID:         job.VideoID,
			CommentID:       t.CommentID,
			ParentCommentID: t.ParentCommentID,
			AuthorChannelID: t.AuthorChannelID,
			TextDisplay:     t.TextDisplay,
			TextOriginal:    t.TextOriginal,
			AuthorName:      t.AuthorName,
			AuthorAvatarURL: t.AuthorAvatarURL,
			PublishedAt:     t.PublishedAt,
			UpdatedAt:       t.UpdatedAt,
			LikeCount:       t.LikeCount,
			Classification:  o.result.label,
			Confidence:      o.result.confidence,
			ModelVersion:    o.result.modelVersion,
			RawPayload:      t.Raw,
		}

		inserted, err := s.comments.Insert(ctx, rec)
		if err != nil {
			log.Printf("analysis %s: failed to persist comment %s: %v", job.ID, t.CommentID, err)
			continue
		}
		if !inserted {
			log.Printf("analysis %s: comment %s classified by a concurrent job, skipping", job.ID, t.CommentID)
			continue
		}
		analyzed++
	}
	return analyzed
}

func (s *AnalysisService) complete(ctx context.Context, job *model.AnalysisJob, analyzed int) (*model.AnalysisJob, error) {
	completedAt := time.Now().UTC()
	if err := s.jobs.MarkCompleted(ctx, job.ID, job.VideoTitle, job.TotalCommentsFetched, analyzed, completedAt); err != nil {
		return nil, s.fail(ctx, job, "failed to finalize analysis job", err)
	}

	job.Status = model.StatusCompleted
	job.TotalCommentsAnalyzed = analyzed
	job.CompletedAt = &completedAt
	log.Printf("analysis %s: completed, %d fetched, %d analyzed", job.ID, job.TotalCommentsFetched, analyzed)
	return job, nil
}

// fail durably marks the job FAILED before re-raising, so no error is ever
// lost without a corresponding persisted status. Comments persisted before
// the failure are kept: partial progress survives.
func (s *AnalysisService) fail(ctx context.Context, job *model.AnalysisJob, msg string, cause error) error {
	failedAt := time.Now().UTC()
	errMsg := msg + ": " + cause.Error()
	if err := s.jobs.MarkFailed(ctx, job.ID, job.TotalCommentsFetched, errMsg, failedAt); err != nil {
		log.Printf("analysis %s: could not persist failure state: %v", job.ID, err)
	}

	job.Status = model.StatusFailed
	job.ErrorMessage = &errMsg
	job.CompletedAt = &failedAt
	log.Printf("analysis %s: failed: %s: %v", job.ID, msg, cause)

	var apiErr *youtube.APIError
	if errors.As(cause, &apiErr) {
		switch apiErr.Reason {
		case youtube.ReasonVideoNotFound:
			return apperr.NotFound("video not found or not accessible")
		case youtube.ReasonQuotaExceeded, youtube.ReasonAuthFailure:
			return apperr.Upstream(msg, cause)
		}
	}
	if errors.Is(cause, pgx.ErrNoRows) {
		return apperr.Internal(msg, cause)
	}
	return apperr.Upstream(msg, cause)
}
