package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kamaldev10/judi-guard-app/internal/classifier"
	"github.com/kamaldev10/judi-guard-app/internal/model"
	"github.com/kamaldev10/judi-guard-app/internal/youtube"
)

// In-memory fakes for the store and gateway contracts. They keep just enough
// state to assert on persisted side effects.

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*model.AnalysisJob
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*model.AnalysisJob)}
}

func (s *fakeJobStore) Create(_ context.Context, job *model.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *fakeJobStore) FindOwned(_ context.Context, id uuid.UUID, userID string) (*model.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	cp := *j
	return &cp, nil
}

func (s *fakeJobStore) MarkCompleted(_ context.Context, id uuid.UUID, title *string, fetched, analyzed int, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.jobs[id]
	j.Status = model.StatusCompleted
	if title != nil {
		j.VideoTitle = title
	}
	j.TotalCommentsFetched = fetched
	j.TotalCommentsAnalyzed = analyzed
	j.CompletedAt = &completedAt
	j.ErrorMessage = nil
	return nil
}

func (s *fakeJobStore) MarkFailed(_ context.Context, id uuid.UUID, fetched int, errMsg string, failedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.jobs[id]
	j.Status = model.StatusFailed
	j.TotalCommentsFetched = fetched
	j.ErrorMessage = &errMsg
	j.CompletedAt = &failedAt
	return nil
}

func (s *fakeJobStore) BeginBatch(_ context.Context, id uuid.UUID, attemptAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.jobs[id]
	j.Status = model.StatusDeletingComments
	j.LastBatchAttemptAt = &attemptAt
	j.ErrorMessage = nil
	return nil
}

func (s *fakeJobStore) FinishBatch(_ context.Context, id uuid.UUID, status model.JobStatus, successes, failures int, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.jobs[id]
	j.Status = status
	j.LastBatchSuccessCount = successes
	j.LastBatchFailureCount = failures
	j.CompletedAt = &finishedAt
	if successes == 0 && failures > 0 {
		msg := "every remediation attempt in the last batch failed"
		j.ErrorMessage = &msg
	} else {
		j.ErrorMessage = nil
	}
	return nil
}

func (s *fakeJobStore) get(id uuid.UUID) model.AnalysisJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.jobs[id]
}

type fakeCommentStore struct {
	mu          sync.Mutex
	nextID      int64
	byID        map[int64]*model.AnalyzedComment
	byCommentID map[string]*model.AnalyzedComment
	insertErr   map[string]error // per upstream comment id
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{
		byID:        make(map[int64]*model.AnalyzedComment),
		byCommentID: make(map[string]*model.AnalyzedComment),
		insertErr:   make(map[string]error),
	}
}

func (s *fakeCommentStore) seed(c model.AnalyzedComment) *model.AnalyzedComment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.byID[c.ID] = &c
	s.byCommentID[c.CommentID] = &c
	return &c
}

func (s *fakeCommentStore) ExistingCommentIDs(_ context.Context, commentIDs []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := make(map[string]struct{})
	for _, id := range commentIDs {
		if _, ok := s.byCommentID[id]; ok {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

func (s *fakeCommentStore) Insert(_ context.Context, c *model.AnalyzedComment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertErr[c.CommentID]; err != nil {
		return false, err
	}
	if _, ok := s.byCommentID[c.CommentID]; ok {
		return false, nil
	}
	s.nextID++
	cp := *c
	cp.ID = s.nextID
	s.byID[cp.ID] = &cp
	s.byCommentID[cp.CommentID] = &cp
	return true, nil
}

func (s *fakeCommentStore) FindOwned(_ context.Context, id int64, userID string) (*model.AnalyzedComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok || c.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (s *fakeCommentStore) ListByJob(_ context.Context, jobID uuid.UUID, label string) ([]model.AnalyzedComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AnalyzedComment
	for i := int64(1); i <= s.nextID; i++ {
		c, ok := s.byID[i]
		if !ok || c.JobID != jobID {
			continue
		}
		if label != "" && c.Classification != label {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeCommentStore) ListFlaggedPending(_ context.Context, jobID uuid.UUID) ([]model.AnalyzedComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AnalyzedComment
	for i := int64(1); i <= s.nextID; i++ {
		c, ok := s.byID[i]
		if !ok || c.JobID != jobID || c.Classification != model.FlaggedLabel || c.IsDeletedOnPlatform {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeCommentStore) RecordRemediation(_ context.Context, id int64, deleted, moderated bool, attemptedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.byID[id]
	c.IsDeletedOnPlatform = deleted
	c.IsModerated = moderated
	c.DeletionAttemptedAt = &attemptedAt
	c.DeletionError = nil
	return nil
}

func (s *fakeCommentStore) RecordRemediationFailure(_ context.Context, id int64, attemptedAt time.Time, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.byID[id]
	c.IsDeletedOnPlatform = false
	c.IsModerated = false
	c.DeletionAttemptedAt = &attemptedAt
	c.DeletionError = &reason
	return nil
}

func (s *fakeCommentStore) get(id int64) model.AnalyzedComment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.byID[id]
}

type fakeFetcher struct {
	title    string
	titleErr error
	threads  []youtube.CommentThread
	listErr  error
}

func (f *fakeFetcher) VideoTitle(context.Context, string) (string, error) {
	return f.title, f.titleErr
}

func (f *fakeFetcher) ListCommentThreads(context.Context, string, int, int) ([]youtube.CommentThread, error) {
	return f.threads, f.listErr
}

type fakeClassifier struct {
	mu      sync.Mutex
	calls   []string
	labels  map[string]string // text → label; default NON_JUDI
	failFor map[string]error  // text → error
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{
		labels:  make(map[string]string),
		failFor: make(map[string]error),
	}
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (*classifier.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if err := f.failFor[text]; err != nil {
		return nil, err
	}
	label := f.labels[text]
	if label == "" {
		label = model.LabelNonJudi
	}
	return &classifier.Result{Label: label, Confidence: 0.93, ModelVersion: "v2"}, nil
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRemediationGateway struct {
	mu             sync.Mutex
	authorChannels map[string]string // comment id → author channel
	authorErr      error
	ownChannel     string
	ownErr         error
	deleteErr      map[string]error
	moderateErr    map[string]error
	deleted        []string
	moderated      []string
}

func newFakeRemediationGateway(ownChannel string) *fakeRemediationGateway {
	return &fakeRemediationGateway{
		authorChannels: make(map[string]string),
		ownChannel:     ownChannel,
		deleteErr:      make(map[string]error),
		moderateErr:    make(map[string]error),
	}
}

func (g *fakeRemediationGateway) CommentAuthorChannel(_ context.Context, commentID string) (string, error) {
	if g.authorErr != nil {
		return "", g.authorErr
	}
	ch, ok := g.authorChannels[commentID]
	if !ok {
		return "", &youtube.APIError{StatusCode: 404, Reason: youtube.ReasonCommentNotFound, Message: "comment not found"}
	}
	return ch, nil
}

func (g *fakeRemediationGateway) AuthenticatedChannel(context.Context) (string, error) {
	return g.ownChannel, g.ownErr
}

func (g *fakeRemediationGateway) DeleteComment(_ context.Context, commentID string) error {
	if err := g.deleteErr[commentID]; err != nil {
		return err
	}
	g.mu.Lock()
	g.deleted = append(g.deleted, commentID)
	g.mu.Unlock()
	return nil
}

func (g *fakeRemediationGateway) SetModerationStatus(_ context.Context, commentID, _ string) error {
	if err := g.moderateErr[commentID]; err != nil {
		return err
	}
	g.mu.Lock()
	g.moderated = append(g.moderated, commentID)
	g.mu.Unlock()
	return nil
}

// fakeRemediator lets batch tests script per-comment outcomes without the
// full decision engine.
type fakeRemediator struct {
	mu     sync.Mutex
	errFor map[string]error // upstream comment id → error
	calls  []string
}

func (f *fakeRemediator) Remediate(_ context.Context, _ string, _ int64, upstreamCommentID string) (*model.AnalyzedComment, error) {
	f.mu.Lock()
	f.calls = append(f.calls, upstreamCommentID)
	f.mu.Unlock()
	if err := f.errFor[upstreamCommentID]; err != nil {
		return nil, err
	}
	return &model.AnalyzedComment{CommentID: upstreamCommentID}, nil
}
