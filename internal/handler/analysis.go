package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/kamaldev10/judi-guard-app/internal/middleware"
	"github.com/kamaldev10/judi-guard-app/internal/model"
	"github.com/kamaldev10/judi-guard-app/internal/service"
)

type AnalysisHandler struct {
	analysis *service.AnalysisService
	jobs     service.JobStore
	comments service.CommentStore
	cache    *service.CacheService
}

func NewAnalysisHandler(analysis *service.AnalysisService, jobs service.JobStore, comments service.CommentStore, cache *service.CacheService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, jobs: jobs, comments: comments, cache: cache}
}

// Start handles POST /api/analyses
func (h *AnalysisHandler) Start(c fiber.Ctx) error {
	userID, errMsg := middleware.ValidateUserID(c.Get(middleware.HeaderUserID))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.AnalyzeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	videoURL, errMsg := middleware.ValidateVideoURL(req.VideoURL)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	start := time.Now()
	job, err := h.analysis.Run(c.Context(), userID, videoURL)
	if err != nil {
		if jobWasCreated(err) {
			Metrics.JobsTotal.WithLabelValues("failed").Inc()
		}
		return respondError(c, err)
	}

	Metrics.JobsTotal.WithLabelValues("completed").Inc()
	Metrics.JobDuration.Observe(time.Since(start).Seconds())
	Metrics.CommentsAnalyzed.Add(float64(job.TotalCommentsAnalyzed))

	return c.Status(fiber.StatusCreated).JSON(job)
}

// GetJob handles GET /api/analyses/:jobId
func (h *AnalysisHandler) GetJob(c fiber.Ctx) error {
	userID, errMsg := middleware.ValidateUserID(c.Get(middleware.HeaderUserID))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	jobID, errMsg := middleware.ValidateJobID(c.Params("jobId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	// Cache-aside for terminal jobs; PROCESSING rows change too often to cache.
	// Keys are user-scoped, so a cache hit implies ownership.
	if cached, err := h.cache.GetJob(c.Context(), jobID.String(), userID); err == nil && cached != nil {
		Metrics.CacheHits.Inc()
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(cached)
	}
	Metrics.CacheMisses.Inc()

	job, err := h.jobs.FindOwned(c.Context(), jobID, userID)
	if err != nil {
		return respondError(c, notFoundOrInternal(err, "Analysis job not found"))
	}

	if job.Status.AnalysisTerminal() {
		if err := h.cache.SetJob(c.Context(), jobID.String(), userID, job); err != nil {
			middleware.Logger.Warn().Err(err).Msg("cache: job set error")
		}
	}
	return c.JSON(job)
}

// ListComments handles GET /api/analyses/:jobId/comments?label=JUDI
func (h *AnalysisHandler) ListComments(c fiber.Ctx) error {
	userID, errMsg := middleware.ValidateUserID(c.Get(middleware.HeaderUserID))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	jobID, errMsg := middleware.ValidateJobID(c.Params("jobId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	label := fiber.Query[string](c, "label")
	if label != "" && label != model.LabelJudi && label != model.LabelNonJudi {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD",
			"label must be one of: JUDI, NON_JUDI")
	}

	// Only the unfiltered listing is cached; label filters go to the DB.
	if label == "" {
		if cached, err := h.cache.GetJobComments(c.Context(), jobID.String(), userID); err == nil && cached != nil {
			Metrics.CacheHits.Inc()
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}
		Metrics.CacheMisses.Inc()
	}

	// Ownership check happens via the job lookup.
	if _, err := h.jobs.FindOwned(c.Context(), jobID, userID); err != nil {
		return respondError(c, notFoundOrInternal(err, "Analysis job not found"))
	}

	comments, err := h.comments.ListByJob(c.Context(), jobID, label)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list comments")
	}
	if comments == nil {
		comments = []model.AnalyzedComment{}
	}

	if label == "" {
		if err := h.cache.SetJobComments(c.Context(), jobID.String(), userID, comments); err != nil {
			middleware.Logger.Warn().Err(err).Msg("cache: comments set error")
		}
	}
	return c.JSON(comments)
}
