package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
)

// UserService handles subscriptions and platform statistics.
type UserService struct {
	users    UserStore
	channels ChannelStore
	cache    *CacheService
	logger   zerolog.Logger
}

func NewUserService(users UserStore, channels ChannelStore, cache *CacheService, logger zerolog.Logger) *UserService {
	return &UserService{users: users, channels: channels, cache: cache, logger: logger}
}

// Subscribe adds the user to a channel's subscribers.
func (s *UserService) Subscribe(ctx context.Context, userID, channelID string) (*model.SubscriptionResult, error) {
	ch, err := s.findChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch.OwnerID == userID {
		return nil, apperr.Validation("You cannot subscribe to your own channel")
	}

	count, err := s.channels.Subscribe(ctx, userID, channelID)
	switch {
	case errors.Is(err, repository.ErrAlreadySubscribed):
		return nil, apperr.Validation("Already subscribed to this channel")
	case repository.IsNotFound(err):
		return nil, apperr.NotFound("Channel")
	case err != nil:
		return nil, apperr.Internal("Failed to subscribe", err)
	}

	s.cache.InvalidateChannel(ctx, channelID)
	return &model.SubscriptionResult{ChannelID: channelID, Subscribed: true, Subscribers: count}, nil
}

// Unsubscribe removes the user from a channel's subscribers.
func (s *UserService) Unsubscribe(ctx context.Context, userID, channelID string) (*model.SubscriptionResult, error) {
	ch, err := s.findChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch.OwnerID == userID {
		return nil, apperr.Validation("You cannot unsubscribe from your own channel")
	}

	count, err := s.channels.Unsubscribe(ctx, userID, channelID)
	switch {
	case errors.Is(err, repository.ErrNotSubscribed):
		return nil, apperr.Validation("Not subscribed to this channel")
	case repository.IsNotFound(err):
		return nil, apperr.NotFound("Channel")
	case err != nil:
		return nil, apperr.Internal("Failed to unsubscribe", err)
	}

	s.cache.InvalidateChannel(ctx, channelID)
	return &model.SubscriptionResult{ChannelID: channelID, Subscribed: false, Subscribers: count}, nil
}

func (s *UserService) findChannel(ctx context.Context, channelID string) (*model.Channel, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Channel")
		}
		return nil, apperr.Internal("Failed to load channel", err)
	}
	return ch, nil
}

// Subscriptions lists the channels a user follows.
func (s *UserService) Subscriptions(ctx context.Context, userID string) ([]*model.Channel, error) {
	channels, err := s.channels.ListSubscribed(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to load subscriptions", err)
	}
	return channels, nil
}

// GetStats returns aggregate platform statistics.
func (s *UserService) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	var stats model.StatsResponse
	if s.cache.GetFeed(ctx, "stats", &stats) {
		return &stats, nil
	}
	st, err := s.users.GetStats(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load stats", err)
	}
	s.cache.SetFeed(ctx, "stats", st)
	return st, nil
}
