// Package youtube is a thin client for the parts of the YouTube Data API v3
// this service needs: listing comment threads, resolving video titles and
// channel ownership, and deleting/moderating comments.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CommentThread is one top-level comment as returned by the comment-threads
// listing. Raw keeps the upstream resource verbatim for audit storage.
type CommentThread struct {
	CommentID       string
	ParentCommentID *string
	AuthorChannelID string
	AuthorName      string
	AuthorAvatarURL string
	TextDisplay     string
	TextOriginal    string
	LikeCount       int
	PublishedAt     time.Time
	UpdatedAt       time.Time
	Raw             json.RawMessage
}

// Client talks to the YouTube Data API on behalf of one authenticated user.
// Token acquisition and refresh happen elsewhere; the client only attaches
// the bearer token it is given.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client for the given API base URL and OAuth token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type commentSnippet struct {
	TextDisplay  string `json:"textDisplay"`
	TextOriginal string `json:"textOriginal"`
	AuthorDisplayName     string `json:"authorDisplayName"`
	AuthorProfileImageURL string `json:"authorProfileImageUrl"`
	AuthorChannelID       struct {
		Value string `json:"value"`
	} `json:"authorChannelId"`
	LikeCount   int    `json:"likeCount"`
	ParentID    string `json:"parentId"`
	PublishedAt string `json:"publishedAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type commentResource struct {
	ID      string         `json:"id"`
	Snippet commentSnippet `json:"snippet"`
}

type commentThreadsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string `json:"id"`
		Snippet struct {
			TopLevelComment json.RawMessage `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// ListCommentThreads pages through the video's top-level comment threads
// until maxItems comments are collected or the listing is exhausted.
func (c *Client) ListCommentThreads(ctx context.Context, videoID string, pageSize, maxItems int) ([]CommentThread, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	var threads []CommentThread
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("part", "snippet")
		q.Set("videoId", videoID)
		q.Set("maxResults", strconv.Itoa(pageSize))
		q.Set("textFormat", "plainText")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page commentThreadsResponse
		if err := c.get(ctx, "/commentThreads", q, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			var top commentResource
			if err := json.Unmarshal(item.Snippet.TopLevelComment, &top); err != nil {
				// Malformed item; the caller's structural validation drops
				// anything with an empty comment id.
				threads = append(threads, CommentThread{Raw: item.Snippet.TopLevelComment})
				continue
			}
			threads = append(threads, threadFromResource(top, item.Snippet.TopLevelComment))
			if len(threads) >= maxItems {
				return threads, nil
			}
		}

		if page.NextPageToken == "" || len(page.Items) == 0 {
			return threads, nil
		}
		pageToken = page.NextPageToken
	}
}

func threadFromResource(top commentResource, raw json.RawMessage) CommentThread {
	t := CommentThread{
		CommentID:       top.ID,
		AuthorChannelID: top.Snippet.AuthorChannelID.Value,
		AuthorName:      top.Snippet.AuthorDisplayName,
		AuthorAvatarURL: top.Snippet.AuthorProfileImageURL,
		TextDisplay:     top.Snippet.TextDisplay,
		TextOriginal:    top.Snippet.TextOriginal,
		LikeCount:       top.Snippet.LikeCount,
		Raw:             raw,
	}
	if top.Snippet.ParentID != "" {
		parent := top.Snippet.ParentID
		t.ParentCommentID = &parent
	}
	if ts, err := time.Parse(time.RFC3339, top.Snippet.PublishedAt); err == nil {
		t.PublishedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, top.Snippet.UpdatedAt); err == nil {
		t.UpdatedAt = ts
	} else {
		t.UpdatedAt = t.PublishedAt
	}
	return t
}

type videoListResponse struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// VideoTitle resolves the title of a video. Returns ReasonVideoNotFound if
// the video does not exist or is private.
func (c *Client) VideoTitle(ctx context.Context, videoID string) (string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", videoID)

	var resp videoListResponse
	if err := c.get(ctx, "/videos", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", &APIError{StatusCode: 404, Reason: ReasonVideoNotFound, Message: "video not found"}
	}
	return resp.Items[0].Snippet.Title, nil
}

// CommentAuthorChannel fetches the comment's current author channel id
// directly from the API. Ownership is always checked live, never from stored
// data, because the comment may have changed since analysis.
func (c *Client) CommentAuthorChannel(ctx context.Context, commentID string) (string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", commentID)

	var resp struct {
		Items []commentResource `json:"items"`
	}
	if err := c.get(ctx, "/comments", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", &APIError{StatusCode: 404, Reason: ReasonCommentNotFound, Message: "comment not found"}
	}
	return resp.Items[0].Snippet.AuthorChannelID.Value, nil
}

type channelListResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

// AuthenticatedChannel returns the channel id of the authenticated user.
func (c *Client) AuthenticatedChannel(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("part", "id")
	q.Set("mine", "true")

	var resp channelListResponse
	if err := c.get(ctx, "/channels", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", &APIError{StatusCode: 403, Reason: ReasonAuthFailure, Message: "authenticated user has no channel"}
	}
	return resp.Items[0].ID, nil
}

// DeleteComment permanently deletes a comment the authenticated user owns.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	q := url.Values{}
	q.Set("id", commentID)
	return c.do(ctx, http.MethodDelete, "/comments", q, nil)
}

// ModerationStatusRejected hides a comment as spam/rejected on videos the
// authenticated user owns.
const ModerationStatusRejected = "rejected"

// SetModerationStatus moderates a comment on a video the authenticated user
// owns (hide-as-spam when status is "rejected").
func (c *Client) SetModerationStatus(ctx context.Context, commentID, status string) error {
	q := url.Values{}
	q.Set("id", commentID)
	q.Set("moderationStatus", status)
	return c.do(ctx, http.MethodPost, "/comments/setModerationStatus", q, nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response from %s: %w", path, err)
		}
	}
	return nil
}
