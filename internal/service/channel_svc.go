package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
	"github.com/rajbhoyar729/LokDarpan/internal/storage"
)

type ChannelService struct {
	channels ChannelStore
	videos   VideoStore
	assets   AssetStore
	cache    *CacheService
	logger   zerolog.Logger
}

func NewChannelService(channels ChannelStore, videos VideoStore, assets AssetStore, cache *CacheService, logger zerolog.Logger) *ChannelService {
	return &ChannelService{channels: channels, videos: videos, assets: assets, cache: cache, logger: logger}
}

// Create creates the caller's channel. A user owns at most one channel.
func (s *ChannelService) Create(ctx context.Context, userID string, req model.CreateChannelRequest, logo *storage.File) (*model.Channel, error) {
	if _, err := s.channels.FindByOwner(ctx, userID); err == nil {
		if logo != nil {
			storage.Discard(*logo)
		}
		return nil, apperr.Conflict("User already has a channel")
	} else if !repository.IsNotFound(err) {
		if logo != nil {
			storage.Discard(*logo)
		}
		return nil, apperr.Internal("Failed to create channel", err)
	}

	ch := &model.Channel{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     userID,
	}

	if logo != nil {
		if err := storage.ImageRule.Check(logo.ContentType, logo.Size); err != nil {
			storage.Discard(*logo)
			return nil, err
		}
		obj, err := s.assets.Upload(ctx, *logo, storage.CategoryLogos)
		if err != nil {
			return nil, apperr.Internal("Failed to upload logo", err)
		}
		ch.LogoURL, ch.LogoKey = obj.URL, obj.Key
	}

	if err := s.channels.Create(ctx, ch); err != nil {
		if ch.LogoKey != "" {
			s.assets.Delete(ctx, ch.LogoKey)
		}
		switch {
		case errors.Is(err, repository.ErrUserHasChannel):
			return nil, apperr.Conflict("User already has a channel")
		case errors.Is(err, repository.ErrDuplicateChannelName):
			return nil, apperr.Conflict("Channel name already exists")
		case repository.IsNotFound(err):
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.Internal("Failed to create channel", err)
	}

	s.logger.Info().Str("channel_id", ch.ID).Str("owner_id", userID).Msg("channel created")
	return ch, nil
}

// Mine returns the caller's channel.
func (s *ChannelService) Mine(ctx context.Context, userID string) (*model.Channel, error) {
	ch, err := s.channels.FindByOwner(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Channel")
		}
		return nil, apperr.Internal("Failed to load channel", err)
	}
	return ch, nil
}

// Get returns a channel by id.
// Uses cache-aside: check Redis first, fall back to DB, then populate cache.
func (s *ChannelService) Get(ctx context.Context, channelID string) (*model.Channel, error) {
	var cached model.Channel
	if s.cache.GetChannel(ctx, channelID, &cached) {
		return &cached, nil
	}

	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Channel")
		}
		return nil, apperr.Internal("Failed to load channel", err)
	}

	s.cache.SetChannel(ctx, channelID, ch)
	return ch, nil
}

// Videos lists a channel's published videos.
func (s *ChannelService) Videos(ctx context.Context, channelID string, page model.Page) (*model.VideoList, error) {
	if _, err := s.Get(ctx, channelID); err != nil {
		return nil, err
	}
	videos, err := s.videos.List(ctx, repository.VideoFilter{ChannelID: channelID}, page)
	if err != nil {
		return nil, apperr.Internal("Failed to load videos", err)
	}
	return &model.VideoList{Videos: videos, Page: page.Page, Limit: page.Limit}, nil
}
