package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rajbhoyar729/LokDarpan/internal/auth"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/service/servicetest"
)

type harness struct {
	store    *servicetest.Store
	assets   *servicetest.Assets
	tokens   *auth.TokenIssuer
	auth     *AuthService
	users    *UserService
	channels *ChannelService
	videos   *VideoService
	comments *CommentService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := servicetest.NewStore()
	assets := servicetest.NewAssets()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	log := zerolog.Nop()
	// nil cache: every lookup misses
	var cache *CacheService

	return &harness{
		store:    store,
		assets:   assets,
		tokens:   tokens,
		auth:     NewAuthService(store.Users(), assets, tokens, log),
		users:    NewUserService(store.Users(), store.Channels(), cache, log),
		channels: NewChannelService(store.Channels(), store.Videos(), assets, cache, log),
		videos:   NewVideoService(store.Videos(), assets, cache, log),
		comments: NewCommentService(store.Comments(), store.Videos(), cache, log),
	}
}

// signup registers a user whose channel is named name.
func (h *harness) signup(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := h.auth.Signup(context.Background(), model.SignupRequest{
		ChannelName: name,
		Email:       name + "@example.com",
		Phone:       "9876543210",
		Password:    "secret123",
	}, nil)
	require.NoError(t, err)
	return u
}

func (h *harness) upload(t *testing.T, ownerID, title string) *model.Video {
	t.Helper()
	video := servicetest.TempFile(t, "clip.mp4", "video/mp4", []byte("video-bytes"))
	thumb := servicetest.TempFile(t, "thumb.png", "image/png", []byte("png-bytes"))
	v, err := h.videos.Create(context.Background(), ownerID, model.VideoMetadata{
		Title:    title,
		Category: "music",
		Tags:     []string{"live"},
	}, video, thumb)
	require.NoError(t, err)
	return v
}

var _ AssetStore = (*servicetest.Assets)(nil)
