package youtube

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// CommentIDPrefix is YouTube's comment-identifier prefix convention. Every
// comment id the Data API returns starts with this literal; anything else in
// a comment-thread listing is structurally invalid.
const CommentIDPrefix = "Ug"

var (
	ErrInvalidVideoURL  = errors.New("not a recognizable YouTube video URL or video id")
	ErrInvalidCommentID = errors.New("malformed YouTube comment id")
	ErrInvalidChannelID = errors.New("malformed YouTube channel id")
)

var (
	videoIDRe   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	commentIDRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{10,}$`)
	channelIDRe = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
)

// ParseVideoID extracts the 11-character video id from a YouTube URL.
// Accepted forms: watch?v=ID, youtu.be/ID, shorts/ID, live/ID, embed/ID,
// and a bare video id.
func ParseVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidVideoURL
	}

	if videoIDRe.MatchString(raw) {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidVideoURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); videoIDRe.MatchString(id) {
			return id, nil
		}
		for _, prefix := range []string{"/shorts/", "/live/", "/embed/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.SplitN(strings.TrimPrefix(u.Path, prefix), "/", 2)[0]
				if videoIDRe.MatchString(id) {
					return id, nil
				}
			}
		}
	case "youtu.be":
		id := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
		if videoIDRe.MatchString(id) {
			return id, nil
		}
	}

	return "", ErrInvalidVideoURL
}

// ValidateCommentID checks the documented upstream convention for comment
// identifiers: non-empty, "Ug" prefix, URL-safe charset.
func ValidateCommentID(id string) error {
	if !strings.HasPrefix(id, CommentIDPrefix) || !commentIDRe.MatchString(id) {
		return ErrInvalidCommentID
	}
	return nil
}

// ValidateChannelID checks the "UC" + 22 chars channel id convention.
func ValidateChannelID(id string) error {
	if !channelIDRe.MatchString(id) {
		return ErrInvalidChannelID
	}
	return nil
}
