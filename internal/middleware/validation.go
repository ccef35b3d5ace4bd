package middleware

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// HeaderUserID carries the authenticated user's identifier. Authentication
// itself (OAuth, sessions) happens upstream of this service.
const HeaderUserID = "X-User-ID"

// Field length limits matching database schema constraints.
const (
	MaxUserIDLen   = 64  // analysis_jobs.user_id VARCHAR(64)
	MaxVideoURLLen = 512 // request-side sanity bound, not stored
)

// userIDRe matches user ids issued by the auth layer: url-safe token chars.
var userIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateUserID checks that a user id is well-formed and within DB limits.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "X-User-ID header is required"
	}
	if len(id) > MaxUserIDLen {
		return "", "user id must be at most 64 characters"
	}
	if !userIDRe.MatchString(id) {
		return "", "user id contains invalid characters"
	}
	return id, ""
}

// ValidateJobID parses a job identifier path segment.
func ValidateJobID(raw string) (uuid.UUID, string) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, "jobId must be a valid UUID"
	}
	return id, ""
}

// ValidateCommentRecordID parses an analyzed-comment record identifier.
func ValidateCommentRecordID(raw string) (int64, string) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, "commentId must be a positive integer"
	}
	return id, ""
}

// ValidateVideoURL trims and bounds the analysis input URL. Structural
// validation of the URL itself happens in the youtube package.
func ValidateVideoURL(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "videoUrl is required"
	}
	if len(raw) > MaxVideoURLLen {
		return "", "videoUrl is too long"
	}
	return raw, ""
}
