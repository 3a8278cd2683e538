package model

import (
	"strings"
	"time"
)

// VideoStatus is the upload lifecycle state of a video.
type VideoStatus string

const (
	StatusPendingMetadata VideoStatus = "PENDING_METADATA"
	StatusUploading       VideoStatus = "UPLOADING"
	StatusProcessing      VideoStatus = "PROCESSING"
	StatusCompleted       VideoStatus = "COMPLETED"
	StatusFailed          VideoStatus = "FAILED"
)

var statusTransitions = map[VideoStatus][]VideoStatus{
	StatusPendingMetadata: {StatusUploading, StatusFailed},
	StatusUploading:       {StatusProcessing, StatusFailed},
	StatusProcessing:      {StatusCompleted, StatusFailed},
}

// CanTransition reports whether a video may move from one status to another.
// COMPLETED and FAILED are terminal.
func (s VideoStatus) CanTransition(to VideoStatus) bool {
	for _, next := range statusTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Video is an uploaded video with its engagement counters.
type Video struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"ownerId"`
	ChannelID    *string     `json:"channelId,omitempty"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Status       VideoStatus `json:"status"`
	VideoURL     string      `json:"videoUrl,omitempty"`
	VideoKey     string      `json:"-"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty"`
	ThumbnailKey string      `json:"-"`
	Category     string      `json:"category"`
	Tags         []string    `json:"tags"`
	IsShort      bool        `json:"isShort"`
	Likes        int         `json:"likes"`
	Dislikes     int         `json:"dislikes"`
	Views        int64       `json:"views"`
	Version      int64       `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// VideoDetail is the single-video response: the video, who published it,
// its comment ids and the caller's own reaction.
type VideoDetail struct {
	*Video
	Owner          *UserSummary    `json:"owner,omitempty"`
	Channel        *ChannelSummary `json:"channel,omitempty"`
	CommentIDs     []string        `json:"comments"`
	ViewerReaction Reaction        `json:"viewerReaction,omitempty"`
}

// VideoMetadata is the validated metadata of a new video.
type VideoMetadata struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	IsShort     bool
}

// UploadVideoRequest holds the text fields of POST /video/upload and
// POST /video/initiate-upload.
type UploadVideoRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category"`
	Tags        string `json:"tags" form:"tags"`
	IsShort     bool   `json:"isShort" form:"isShort"`
	ContentType string `json:"contentType" form:"contentType"`
}

// InitiateUploadResponse carries the presigned URL the client PUTs the
// video bytes to.
type InitiateUploadResponse struct {
	Video     *Video    `json:"video"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UpdateVideoRequest is the body of PUT /video/:videoId. Absent fields are
// left unchanged.
type UpdateVideoRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
	Category    *string `json:"category" form:"category"`
	Tags        *string `json:"tags" form:"tags"`
	IsShort     *bool   `json:"isShort" form:"isShort"`
}

// VideoPatch is a validated partial update.
type VideoPatch struct {
	Title        *string
	Description  *string
	Category     *string
	Tags         *[]string
	IsShort      *bool
	ThumbnailURL *string
	ThumbnailKey *string
}

// Empty reports whether the patch changes nothing.
func (p VideoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Tags == nil && p.IsShort == nil && p.ThumbnailURL == nil
}

// ParseTags splits a comma separated tag string, trimming entries and
// dropping empty ones.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
