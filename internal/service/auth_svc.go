package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
	"github.com/rajbhoyar729/LokDarpan/internal/auth"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
	"github.com/rajbhoyar729/LokDarpan/internal/storage"
)

type AuthService struct {
	users  UserStore
	assets AssetStore
	tokens *auth.TokenIssuer
	logger zerolog.Logger
}

func NewAuthService(users UserStore, assets AssetStore, tokens *auth.TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, assets: assets, tokens: tokens, logger: logger}
}

// Signup registers a user. When a channel name or a logo is supplied the
// user's channel is created with it in the same transaction. The logo temp
// file, if any, is always consumed.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest, logo *storage.File) (*model.User, error) {
	discardLogo := func() {
		if logo != nil {
			storage.Discard(*logo)
		}
	}

	name := strings.TrimSpace(req.ChannelName)
	if name == "" {
		name = strings.TrimSpace(req.Name)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if logo != nil {
		if err := storage.ImageRule.Check(logo.ContentType, logo.Size); err != nil {
			discardLogo()
			return nil, err
		}
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		discardLogo()
		return nil, apperr.Internal("Failed to create user", err)
	}
	if exists {
		discardLogo()
		return nil, apperr.Conflict("Email already exists")
	}
	exists, err = s.users.NameExists(ctx, name)
	if err != nil {
		discardLogo()
		return nil, apperr.Internal("Failed to create user", err)
	}
	if exists {
		discardLogo()
		return nil, apperr.Conflict("Channel name already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		discardLogo()
		return nil, apperr.Internal("Failed to create user", err)
	}

	u := &model.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
	}

	var ch *model.Channel
	if req.ChannelName != "" || logo != nil {
		ch = &model.Channel{Name: name, Description: strings.TrimSpace(req.Description)}
		if logo != nil {
			obj, err := s.assets.Upload(ctx, *logo, storage.CategoryLogos)
			if err != nil {
				return nil, apperr.Internal("Failed to upload logo", err)
			}
			ch.LogoURL, ch.LogoKey = obj.URL, obj.Key
		}
	}

	if err := s.users.Create(ctx, u, ch); err != nil {
		if ch != nil && ch.LogoKey != "" {
			s.assets.Delete(ctx, ch.LogoKey)
		}
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperr.Conflict("Email already exists")
		case errors.Is(err, repository.ErrDuplicateName), errors.Is(err, repository.ErrDuplicateChannelName):
			return nil, apperr.Conflict("Channel name already exists")
		}
		return nil, apperr.Internal("Failed to create user", err)
	}

	s.logger.Info().Str("user_id", u.ID).Bool("with_channel", ch != nil).Msg("user signed up")
	return u, nil
}

// Login checks credentials and issues a token. No token is issued on any
// failure.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.Authentication("User not found")
		}
		return nil, apperr.Internal("Failed to log in", err)
	}

	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperr.Authentication("Invalid password")
		}
		return nil, apperr.Internal("Failed to log in", err)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperr.Internal("Failed to log in", err)
	}

	return &model.LoginResponse{User: u, Token: token}, nil
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	return u, nil
}
