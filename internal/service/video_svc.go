package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
	"github.com/rajbhoyar729/LokDarpan/internal/storage"
	"github.com/rajbhoyar729/LokDarpan/pkg/hash"
)

const (
	// maxReactionAttempts bounds the optimistic retry loop of a toggle.
	maxReactionAttempts = 5
	// PresignedUploadTTL is how long an initiate-upload URL stays valid.
	PresignedUploadTTL = 15 * time.Minute
)

type VideoService struct {
	videos VideoStore
	assets AssetStore
	cache  *CacheService
	logger zerolog.Logger
	now    func() time.Time
	// videoRule limits every stored video, uploaded here or directly.
	videoRule storage.Rule
}

func NewVideoService(videos VideoStore, assets AssetStore, cache *CacheService, logger zerolog.Logger) *VideoService {
	return &VideoService{
		videos: videos,
		assets: assets,
		cache:  cache,
		logger: logger.With().Str("component", "video").Logger(),
		now:    time.Now,

		videoRule: storage.VideoRule,
	}
}

// Create uploads a video and its thumbnail and stores a completed video.
// Both temp files are consumed whatever the outcome; if a later step fails,
// assets already uploaded are deleted again.
func (s *VideoService) Create(ctx context.Context, ownerID string, meta model.VideoMetadata, video, thumbnail storage.File) (*model.Video, error) {
	if err := s.videoRule.Check(video.ContentType, video.Size); err != nil {
		storage.Discard(video)
		storage.Discard(thumbnail)
		return nil, err
	}
	if err := storage.ImageRule.Check(thumbnail.ContentType, thumbnail.Size); err != nil {
		storage.Discard(video)
		storage.Discard(thumbnail)
		return nil, err
	}

	videoObj, err := s.assets.Upload(ctx, video, storage.CategoryVideos)
	if err != nil {
		storage.Discard(thumbnail)
		return nil, apperr.Internal("Failed to upload video", err)
	}

	thumbObj, err := s.assets.Upload(ctx, thumbnail, storage.CategoryThumbnails)
	if err != nil {
		s.assets.Delete(ctx, videoObj.Key)
		return nil, apperr.Internal("Failed to upload thumbnail", err)
	}

	v := &model.Video{
		OwnerID:      ownerID,
		Title:        meta.Title,
		Description:  meta.Description,
		Status:       model.StatusCompleted,
		VideoURL:     videoObj.URL,
		VideoKey:     videoObj.Key,
		ThumbnailURL: thumbObj.URL,
		ThumbnailKey: thumbObj.Key,
		Category:     meta.Category,
		Tags:         meta.Tags,
		IsShort:      meta.IsShort,
	}
	if err := s.videos.Create(ctx, v); err != nil {
		s.assets.Delete(ctx, videoObj.Key)
		s.assets.Delete(ctx, thumbObj.Key)
		return nil, apperr.Internal("Failed to save video", err)
	}

	s.logger.Info().Str("video_id", v.ID).Str("owner_id", ownerID).Msg("video uploaded")
	return v, nil
}

// InitiateUpload creates a video awaiting its bytes and returns a presigned
// URL the client uploads them to directly.
func (s *VideoService) InitiateUpload(ctx context.Context, ownerID string, meta model.VideoMetadata, filename, contentType string) (*model.InitiateUploadResponse, error) {
	if err := s.videoRule.CheckType(contentType); err != nil {
		return nil, err
	}

	obj, uploadURL, err := s.assets.PresignUpload(ctx, storage.CategoryVideos, filename, contentType, PresignedUploadTTL)
	if err != nil {
		return nil, apperr.Internal("Failed to initiate upload", err)
	}

	v := &model.Video{
		OwnerID:     ownerID,
		Title:       meta.Title,
		Description: meta.Description,
		Status:      model.StatusPendingMetadata,
		VideoURL:    obj.URL,
		VideoKey:    obj.Key,
		Category:    meta.Category,
		Tags:        meta.Tags,
		IsShort:     meta.IsShort,
	}
	if err := s.videos.Create(ctx, v); err != nil {
		return nil, apperr.Internal("Failed to initiate upload", err)
	}

	v, err = s.videos.TransitionStatus(ctx, v.ID, model.StatusPendingMetadata, model.StatusUploading)
	if err != nil {
		return nil, apperr.Internal("Failed to initiate upload", err)
	}

	return &model.InitiateUploadResponse{
		Video:     v,
		UploadURL: uploadURL,
		ExpiresAt: s.now().Add(PresignedUploadTTL).UTC(),
	}, nil
}

// CompleteUpload finishes a direct upload. If the stored object passes the
// video rule the video moves through PROCESSING to COMPLETED; otherwise it is
// marked FAILED and any rejected object is deleted.
func (s *VideoService) CompleteUpload(ctx context.Context, videoID, requesterID string) (*model.Video, error) {
	v, err := s.owned(ctx, videoID, requesterID, "You can only complete your own uploads")
	if err != nil {
		return nil, err
	}
	if v.Status != model.StatusUploading {
		return nil, apperr.Validationf("Video is %s, not awaiting upload", v.Status)
	}

	info, err := s.assets.Stat(ctx, v.VideoKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.failUpload(ctx, v)
		return nil, apperr.Validation("Uploaded video file not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to verify upload", err)
	}
	if err := s.videoRule.Check(info.ContentType, info.Size); err != nil {
		s.failUpload(ctx, v)
		s.assets.Delete(ctx, v.VideoKey)
		return nil, err
	}

	steps := []struct{ from, to model.VideoStatus }{
		{model.StatusUploading, model.StatusProcessing},
		{model.StatusProcessing, model.StatusCompleted},
	}
	for _, step := range steps {
		v, err = s.videos.TransitionStatus(ctx, videoID, step.from, step.to)
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, apperr.Validation("Video upload state changed, retry")
		}
		if err != nil {
			return nil, apperr.Internal("Failed to complete upload", err)
		}
	}

	s.cache.InvalidateVideo(ctx, videoID)
	s.logger.Info().Str("video_id", videoID).Msg("direct upload completed")
	return v, nil
}

func (s *VideoService) failUpload(ctx context.Context, v *model.Video) {
	if _, err := s.videos.TransitionStatus(ctx, v.ID, model.StatusUploading, model.StatusFailed); err != nil {
		s.logger.Error().Err(err).Str("video_id", v.ID).Msg("mark upload failed")
	}
	s.cache.InvalidateVideo(ctx, v.ID)
}

// Update applies an owner's partial update. A new thumbnail replaces the
// old asset, which is deleted first.
func (s *VideoService) Update(ctx context.Context, videoID, requesterID string, patch model.VideoPatch, thumbnail *storage.File) (*model.Video, error) {
	discard := func() {
		if thumbnail != nil {
			storage.Discard(*thumbnail)
		}
	}

	v, err := s.owned(ctx, videoID, requesterID, "You can only update your own videos")
	if err != nil {
		discard()
		return nil, err
	}

	if thumbnail != nil {
		if err := storage.ImageRule.Check(thumbnail.ContentType, thumbnail.Size); err != nil {
			discard()
			return nil, err
		}
		s.assets.Delete(ctx, v.ThumbnailKey)
		obj, err := s.assets.Upload(ctx, *thumbnail, storage.CategoryThumbnails)
		if err != nil {
			return nil, apperr.Internal("Failed to upload thumbnail", err)
		}
		patch.ThumbnailURL, patch.ThumbnailKey = &obj.URL, &obj.Key
	}

	if patch.Empty() {
		return v, nil
	}

	updated, err := s.videos.Update(ctx, videoID, patch)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Video")
		}
		return nil, apperr.Internal("Failed to update video", err)
	}

	s.cache.InvalidateVideo(ctx, videoID)
	return updated, nil
}

// Delete removes an owner's video. Both assets are deleted (best effort)
// before the record.
func (s *VideoService) Delete(ctx context.Context, videoID, requesterID string) error {
	v, err := s.owned(ctx, videoID, requesterID, "You can only delete your own videos")
	if err != nil {
		return err
	}

	s.assets.Delete(ctx, v.VideoKey)
	s.assets.Delete(ctx, v.ThumbnailKey)

	if err := s.videos.Delete(ctx, videoID); err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("Video")
		}
		return apperr.Internal("Failed to delete video", err)
	}

	s.cache.InvalidateVideo(ctx, videoID)
	s.logger.Info().Str("video_id", videoID).Str("owner_id", requesterID).Msg("video deleted")
	return nil
}

// ToggleLike flips the user's like on a video, clearing a dislike if set.
func (s *VideoService) ToggleLike(ctx context.Context, videoID, userID string) (*model.ReactionResult, error) {
	return s.toggle(ctx, videoID, userID, model.ReactionLike)
}

// ToggleDislike flips the user's dislike on a video, clearing a like if set.
func (s *VideoService) ToggleDislike(ctx context.Context, videoID, userID string) (*model.ReactionResult, error) {
	return s.toggle(ctx, videoID, userID, model.ReactionDislike)
}

// toggle reads the reaction state, computes the transition and writes it
// with a version check, retrying when a concurrent toggle got there first.
func (s *VideoService) toggle(ctx context.Context, videoID, userID string, pressed model.Reaction) (*model.ReactionResult, error) {
	for attempt := 1; attempt <= maxReactionAttempts; attempt++ {
		state, err := s.videos.ReactionState(ctx, videoID, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperr.NotFound("Video")
			}
			return nil, apperr.Internal("Failed to update reaction", err)
		}

		t := model.ToggleReaction(state.Current, pressed)
		likes, dislikes, err := s.videos.ApplyReaction(ctx, videoID, userID, state.Version, t)
		if errors.Is(err, repository.ErrStaleVersion) {
			s.logger.Debug().Str("video_id", videoID).Int("attempt", attempt).Msg("reaction version conflict, retrying")
			continue
		}
		if err != nil {
			return nil, apperr.Internal("Failed to update reaction", err)
		}

		s.cache.InvalidateVideo(ctx, videoID)
		return &model.ReactionResult{Action: t.Action, Likes: likes, Dislikes: dislikes, Reaction: t.To}, nil
	}

	return nil, apperr.Internal("Failed to update reaction", repository.ErrStaleVersion)
}

// Get returns a video with its owner, channel and comment ids. Videos that
// are not COMPLETED are only visible to their owner.
func (s *VideoService) Get(ctx context.Context, videoID, viewerID string) (*model.VideoDetail, error) {
	var d model.VideoDetail
	if !s.cache.GetVideo(ctx, videoID, &d) || d.Video == nil {
		found, err := s.videos.FindDetail(ctx, videoID, "")
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperr.NotFound("Video")
			}
			return nil, apperr.Internal("Failed to load video", err)
		}
		d = *found
		if d.Status == model.StatusCompleted {
			s.cache.SetVideo(ctx, videoID, &d)
		}
	}

	if d.Status != model.StatusCompleted && d.OwnerID != viewerID {
		return nil, apperr.NotFound("Video")
	}

	if viewerID != "" {
		state, err := s.videos.ReactionState(ctx, videoID, viewerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperr.NotFound("Video")
			}
			return nil, apperr.Internal("Failed to load video", err)
		}
		d.ViewerReaction = state.Current
	}
	return &d, nil
}

// RecordView counts a view. Signed-in viewers are counted once per video.
func (s *VideoService) RecordView(ctx context.Context, videoID, viewerID string) (int64, error) {
	views, err := s.videos.RecordView(ctx, videoID, viewerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, apperr.NotFound("Video")
		}
		return 0, apperr.Internal("Failed to record view", err)
	}
	return views, nil
}

// List returns the home feed: published videos, newest first.
func (s *VideoService) List(ctx context.Context, page model.Page) (*model.VideoList, error) {
	return s.list(ctx, repository.VideoFilter{}, page)
}

// Shorts returns published short videos.
func (s *VideoService) Shorts(ctx context.Context, page model.Page) (*model.VideoList, error) {
	return s.list(ctx, repository.VideoFilter{ShortsOnly: true}, page)
}

// Search matches q against title, description, category and tags. Results
// are cached per normalized query and page.
func (s *VideoService) Search(ctx context.Context, q string, page model.Page) (*model.VideoList, error) {
	key := "search:" + hash.QueryKey(q) + ":" + pageKey(page)
	var cached model.VideoList
	if s.cache.GetFeed(ctx, key, &cached) {
		return &cached, nil
	}
	list, err := s.list(ctx, repository.VideoFilter{Query: q}, page)
	if err != nil {
		return nil, err
	}
	s.cache.SetFeed(ctx, key, list)
	return list, nil
}

// SubscriptionFeed returns videos from the channels a user follows.
func (s *VideoService) SubscriptionFeed(ctx context.Context, userID string, page model.Page) (*model.VideoList, error) {
	return s.list(ctx, repository.VideoFilter{SubscriberID: userID}, page)
}

// Liked returns the videos a user liked.
func (s *VideoService) Liked(ctx context.Context, userID string, page model.Page) (*model.VideoList, error) {
	return s.list(ctx, repository.VideoFilter{LikedBy: userID}, page)
}

// Trending ranks recent videos by TrendingScore.
func (s *VideoService) Trending(ctx context.Context, limit int) (*model.VideoList, error) {
	page := model.NewPage(1, limit)
	key := "trending:" + pageKey(page)

	var cached model.VideoList
	if s.cache.GetFeed(ctx, key, &cached) {
		return &cached, nil
	}

	now := s.now()
	candidates, err := s.videos.List(ctx, repository.VideoFilter{Since: now.Add(-TrendingWindow)},
		model.Page{Page: 1, Limit: TrendingCandidates})
	if err != nil {
		return nil, apperr.Internal("Failed to load trending videos", err)
	}

	list := &model.VideoList{Videos: RankTrending(candidates, now, page.Limit), Page: 1, Limit: page.Limit}
	s.cache.SetFeed(ctx, key, list)
	return list, nil
}

func (s *VideoService) list(ctx context.Context, f repository.VideoFilter, page model.Page) (*model.VideoList, error) {
	videos, err := s.videos.List(ctx, f, page)
	if err != nil {
		return nil, apperr.Internal("Failed to load videos", err)
	}
	return &model.VideoList{Videos: videos, Page: page.Page, Limit: page.Limit}, nil
}

// owned loads a video and checks the requester owns it.
func (s *VideoService) owned(ctx context.Context, videoID, requesterID, denied string) (*model.Video, error) {
	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Video")
		}
		return nil, apperr.Internal("Failed to load video", err)
	}
	if v.OwnerID != requesterID {
		return nil, apperr.Authorization(denied)
	}
	return v, nil
}

func pageKey(p model.Page) string {
	return fmt.Sprintf("%d:%d", p.Page, p.Limit)
}
