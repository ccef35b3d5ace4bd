package youtube

import (
	"encoding/json"
	"fmt"
)

// ReasonCode is the closed set of machine-readable failure reasons this
// client surfaces. Values are normalized from the Data API's error `reason`
// field so callers never have to match on message text.
type ReasonCode string

const (
	ReasonBadRequest       ReasonCode = "badRequest"
	ReasonCommentNotFound  ReasonCode = "commentNotFound"
	ReasonVideoNotFound    ReasonCode = "videoNotFound"
	ReasonNotCommentOwner  ReasonCode = "notCommentOwner"
	ReasonNotVideoModerator ReasonCode = "notVideoModerator"
	ReasonForbidden        ReasonCode = "forbidden"
	ReasonQuotaExceeded    ReasonCode = "quotaExceeded"
	ReasonAuthFailure      ReasonCode = "authFailure"
	ReasonUnknown          ReasonCode = "unknown"
)

// APIError is a non-2xx response from the YouTube Data API.
type APIError struct {
	StatusCode int
	Reason     ReasonCode
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube api: status %d (%s): %s", e.StatusCode, e.Reason, e.Message)
}

// errorBody mirrors the Data API error envelope.
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// parseAPIError turns a non-2xx response body into an APIError with a
// normalized reason code. Unparseable bodies fall back to status-based codes.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Reason: ReasonUnknown, Message: "upstream request failed"}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Code != 0 {
		apiErr.Message = eb.Error.Message
		if len(eb.Error.Errors) > 0 {
			apiErr.Reason = normalizeReason(eb.Error.Errors[0].Reason, status)
			return apiErr
		}
	}

	switch status {
	case 400:
		apiErr.Reason = ReasonBadRequest
	case 401:
		apiErr.Reason = ReasonAuthFailure
	case 403:
		apiErr.Reason = ReasonForbidden
	case 404:
		apiErr.Reason = ReasonCommentNotFound
	}
	return apiErr
}

func normalizeReason(raw string, status int) ReasonCode {
	switch raw {
	case "commentNotFound":
		return ReasonCommentNotFound
	case "videoNotFound":
		return ReasonVideoNotFound
	case "forbidden-not-comment-owner", "processingFailure-not-owner", "notCommentOwner":
		return ReasonNotCommentOwner
	case "forbidden-not-channel-owner", "ineligibleAccount", "notVideoModerator":
		return ReasonNotVideoModerator
	case "quotaExceeded", "rateLimitExceeded", "dailyLimitExceeded":
		return ReasonQuotaExceeded
	case "authError", "unauthorized", "expired":
		return ReasonAuthFailure
	case "badRequest", "invalidParameter", "required":
		return ReasonBadRequest
	case "forbidden":
		return ReasonForbidden
	}

	switch status {
	case 400:
		return ReasonBadRequest
	case 401:
		return ReasonAuthFailure
	case 403:
		return ReasonForbidden
	case 404:
		return ReasonCommentNotFound
	}
	return ReasonUnknown
}
