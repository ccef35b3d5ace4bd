package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kamaldev10/judi-guard-app/internal/middleware"
	"github.com/kamaldev10/judi-guard-app/internal/service"
)

type RemediationHandler struct {
	engine *service.RemediationService
	batch  *service.BatchRemediationService
	cache  *service.CacheService
}

func NewRemediationHandler(engine *service.RemediationService, batch *service.BatchRemediationService, cache *service.CacheService) *RemediationHandler {
	return &RemediationHandler{engine: engine, batch: batch, cache: cache}
}

// remediateSingleRequest carries the upstream comment id for a single
// remediation; the record id comes from the path.
type remediateSingleRequest struct {
	CommentID string `json:"commentId"`
}

// RemediateOne handles POST /api/comments/:commentId/remediate
func (h *RemediationHandler) RemediateOne(c fiber.Ctx) error {
	userID, errMsg := middleware.ValidateUserID(c.Get(middleware.HeaderUserID))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	recordID, errMsg := middleware.ValidateCommentRecordID(c.Params("commentId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req remediateSingleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	rec, err := h.engine.Remediate(c.Context(), userID, recordID, req.CommentID)
	if err != nil {
		Metrics.RemediationsTotal.WithLabelValues("single", "failure").Inc()
		return respondError(c, err)
	}

	Metrics.RemediationsTotal.WithLabelValues("single", "success").Inc()
	h.invalidateJob(c, rec.JobID.String(), userID)
	return c.JSON(rec)
}

// RemediateBatch handles POST /api/analyses/:jobId/remediate
func (h *RemediationHandler) RemediateBatch(c fiber.Ctx) error {
	userID, errMsg := middleware.ValidateUserID(c.Get(middleware.HeaderUserID))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	jobID, errMsg := middleware.ValidateJobID(c.Params("jobId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	summary, err := h.batch.Run(c.Context(), userID, jobID)
	if err != nil {
		return respondError(c, err)
	}

	Metrics.RemediationsTotal.WithLabelValues("batch", "success").Add(float64(summary.SuccessfullyDeleted))
	Metrics.RemediationsTotal.WithLabelValues("batch", "failure").Add(float64(summary.FailedToDelete))
	h.invalidateJob(c, jobID.String(), userID)
	return c.JSON(summary)
}

func (h *RemediationHandler) invalidateJob(c fiber.Ctx, jobID, userID string) {
	if err := h.cache.InvalidateJob(c.Context(), jobID, userID); err != nil {
		middleware.Logger.Warn().Err(err).Str("job_id", jobID).Msg("cache: invalidate error")
	}
}
