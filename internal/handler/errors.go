package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/kamaldev10/judi-guard-app/internal/apperr"
	"github.com/kamaldev10/judi-guard-app/internal/middleware"
)

// notFoundOrInternal classifies a repository lookup error: a missing row
// becomes NOT_FOUND with the given message, anything else stays internal.
func notFoundOrInternal(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(message)
	}
	return apperr.Internal(message, err)
}

// jobWasCreated reports whether an analysis error happened after the job row
// existed. Input validation rejects the request before any row is created, so
// those errors must not count toward the failed-jobs metric.
func jobWasCreated(err error) bool {
	return !apperr.IsCode(err, apperr.CodeInvalidInput)
}

// respondError maps a classified service error onto the API error envelope.
func respondError(c fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)
	return middleware.ErrorResponse(c, statusForCode(code), string(code), apperr.MessageOf(err))
}

func statusForCode(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidInput:
		return fiber.StatusBadRequest
	case apperr.CodeNotFound:
		return fiber.StatusNotFound
	case apperr.CodeForbidden:
		return fiber.StatusForbidden
	case apperr.CodeUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
