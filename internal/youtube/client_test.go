package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func threadItem(id, channel, text string) map[string]any {
	return map[string]any{
		"id": id,
		"snippet": map[string]any{
			"topLevelComment": map[string]any{
				"id": id,
				"snippet": map[string]any{
					"textDisplay":           text,
					"textOriginal":          text,
					"authorDisplayName":     "someone",
					"authorProfileImageUrl": "https://example.com/avatar.png",
					"authorChannelId":       map[string]any{"value": channel},
					"likeCount":             3,
					"publishedAt":           "2025-06-01T10:00:00Z",
					"updatedAt":             "2025-06-01T10:05:00Z",
				},
			},
		},
	}
}

func TestListCommentThreads_Pagination(t *testing.T) {
	pages := map[string][]map[string]any{
		"": {
			threadItem("Ugw0000000001", "UCaaaaaaaaaaaaaaaaaaaaaa", "one"),
			threadItem("Ugw0000000002", "UCaaaaaaaaaaaaaaaaaaaaaa", "two"),
		},
		"page-2": {
			threadItem("Ugw0000000003", "UCbbbbbbbbbbbbbbbbbbbbbb", "three"),
		},
	}

	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/commentThreads" {
			t.Errorf("path = %s, want /commentThreads", r.URL.Path)
		}
		if got := r.URL.Query().Get("videoId"); got != "dQw4w9WgXcQ" {
			t.Errorf("videoId = %s, want dQw4w9WgXcQ", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("authorization = %q, want bearer token", got)
		}

		token := r.URL.Query().Get("pageToken")
		requests = append(requests, token)

		resp := map[string]any{"items": pages[token]}
		if token == "" {
			resp["nextPageToken"] = "page-2"
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1")
	threads, err := c.ListCommentThreads(context.Background(), "dQw4w9WgXcQ", 100, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(threads) != 3 {
		t.Fatalf("threads = %d, want 3 across two pages", len(threads))
	}
	if len(requests) != 2 || requests[1] != "page-2" {
		t.Errorf("page tokens requested = %v, want [\"\", \"page-2\"]", requests)
	}

	first := threads[0]
	if first.CommentID != "Ugw0000000001" {
		t.Errorf("comment id = %s, want Ugw0000000001", first.CommentID)
	}
	if first.AuthorChannelID != "UCaaaaaaaaaaaaaaaaaaaaaa" {
		t.Errorf("author channel = %s", first.AuthorChannelID)
	}
	if first.PublishedAt.IsZero() || first.UpdatedAt.Before(first.PublishedAt) {
		t.Errorf("timestamps not parsed: published=%v updated=%v", first.PublishedAt, first.UpdatedAt)
	}
	if len(first.Raw) == 0 {
		t.Error("raw payload not retained")
	}
}

func TestListCommentThreads_StopsAtMaxItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := make([]map[string]any, 0, 100)
		for i := range 100 {
			items = append(items, threadItem(fmt.Sprintf("Ugw%010d", i), "UCaaaaaaaaaaaaaaaaaaaaaa", "text"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"nextPageToken": "more",
			"items":         items,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1")
	threads, err := c.ListCommentThreads(context.Background(), "dQw4w9WgXcQ", 100, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(threads) != 42 {
		t.Errorf("threads = %d, want capped at 42", len(threads))
	}
}

func TestVideoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "dQw4w9WgXcQ" {
			t.Errorf("id = %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"snippet": map[string]any{"title": "My Video"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1")
	title, err := c.VideoTitle(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "My Video" {
		t.Errorf("title = %q, want My Video", title)
	}
}

func TestVideoTitle_EmptyListingIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1")
	_, err := c.VideoTitle(context.Background(), "dQw4w9WgXcQ")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Reason != ReasonVideoNotFound {
		t.Fatalf("err = %v, want videoNotFound APIError", err)
	}
}

func TestErrorEnvelopeParsing(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ReasonCode
	}{
		{
			"quota exceeded",
			403,
			`{"error":{"code":403,"message":"quota","errors":[{"reason":"quotaExceeded"}]}}`,
			ReasonQuotaExceeded,
		},
		{
			"not comment owner",
			403,
			`{"error":{"code":403,"message":"nope","errors":[{"reason":"forbidden-not-comment-owner"}]}}`,
			ReasonNotCommentOwner,
		},
		{
			"not video moderator",
			403,
			`{"error":{"code":403,"message":"nope","errors":[{"reason":"ineligibleAccount"}]}}`,
			ReasonNotVideoModerator,
		},
		{
			"comment gone",
			404,
			`{"error":{"code":404,"message":"gone","errors":[{"reason":"commentNotFound"}]}}`,
			ReasonCommentNotFound,
		},
		{
			"unparseable body falls back to status",
			403,
			`<html>forbidden</html>`,
			ReasonForbidden,
		},
		{
			"unknown reason falls back to status",
			401,
			`{"error":{"code":401,"message":"expired token","errors":[{"reason":"somethingNew"}]}}`,
			ReasonAuthFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "tok-1")
			err := c.DeleteComment(context.Background(), "Ugw0000000001")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Reason != tt.want {
				t.Errorf("reason = %s, want %s", apiErr.Reason, tt.want)
			}
		})
	}
}

func TestSetModerationStatus_RequestShape(t *testing.T) {
	var gotMethod, gotPath, gotID, gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotID = r.URL.Query().Get("id")
		gotStatus = r.URL.Query().Get("moderationStatus")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1")
	if err := c.SetModerationStatus(context.Background(), "Ugw0000000001", ModerationStatusRejected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/comments/setModerationStatus" {
		t.Errorf("request = %s %s, want POST /comments/setModerationStatus", gotMethod, gotPath)
	}
	if gotID != "Ugw0000000001" || gotStatus != "rejected" {
		t.Errorf("query = id:%s status:%s", gotID, gotStatus)
	}
}
