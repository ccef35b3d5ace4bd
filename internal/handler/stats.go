package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kamaldev10/judi-guard-app/internal/repository"
)

type StatsHandler struct {
	jobs *repository.JobRepo
}

func NewStatsHandler(jobs *repository.JobRepo) *StatsHandler {
	return &StatsHandler{jobs: jobs}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.jobs.GetStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to fetch stats",
			},
		})
	}
	return c.JSON(stats)
}
