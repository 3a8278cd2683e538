package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
)

type CommentService struct {
	comments CommentStore
	videos   VideoStore
	cache    *CacheService
	logger   zerolog.Logger
}

func NewCommentService(comments CommentStore, videos VideoStore, cache *CacheService, logger zerolog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		videos:   videos,
		cache:    cache,
		logger:   logger.With().Str("component", "comment").Logger(),
	}
}

func (s *CommentService) Create(ctx context.Context, videoID, authorID, text string) (*model.Comment, error) {
	c := &model.Comment{VideoID: videoID, AuthorID: authorID, Text: strings.TrimSpace(text)}
	if err := s.comments.Create(ctx, c); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Video")
		}
		return nil, apperr.Internal("Failed to add comment", err)
	}
	s.cache.InvalidateVideo(ctx, videoID)
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, commentID, requesterID, text string) (*model.Comment, error) {
	if _, err := s.authored(ctx, commentID, requesterID, "You can only update your own comments"); err != nil {
		return nil, err
	}
	c, err := s.comments.UpdateText(ctx, commentID, strings.TrimSpace(text))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Comment")
		}
		return nil, apperr.Internal("Failed to update comment", err)
	}
	return c, nil
}

// Delete removes a comment and drops it from its video's comment list.
func (s *CommentService) Delete(ctx context.Context, commentID, requesterID string) error {
	if _, err := s.authored(ctx, commentID, requesterID, "You can only delete your own comments"); err != nil {
		return err
	}
	videoID, err := s.comments.Delete(ctx, commentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("Comment")
		}
		return apperr.Internal("Failed to delete comment", err)
	}
	s.cache.InvalidateVideo(ctx, videoID)
	return nil
}

// List returns a page of a video's comments, newest first.
func (s *CommentService) List(ctx context.Context, videoID string, page model.Page) ([]*model.Comment, error) {
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Video")
		}
		return nil, apperr.Internal("Failed to load comments", err)
	}
	comments, err := s.comments.ListByVideo(ctx, videoID, page)
	if err != nil {
		return nil, apperr.Internal("Failed to load comments", err)
	}
	return comments, nil
}

func (s *CommentService) authored(ctx context.Context, commentID, requesterID, denied string) (*model.Comment, error) {
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Comment")
		}
		return nil, apperr.Internal("Failed to load comment", err)
	}
	if c.AuthorID != requesterID {
		return nil, apperr.Authorization(denied)
	}
	return c, nil
}
