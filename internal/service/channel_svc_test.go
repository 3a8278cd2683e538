package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/service/servicetest"
)

func signupWithoutChannel(t *testing.T, h *harness, name string) *model.User {
	t.Helper()
	u, err := h.auth.Signup(context.Background(), model.SignupRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret123",
	}, nil)
	require.NoError(t, err)
	return u
}

func TestChannelCreate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := signupWithoutChannel(t, h, "viewer")

	logo := servicetest.TempFile(t, "logo.jpg", "image/jpeg", []byte("jpg"))
	ch, err := h.channels.Create(ctx, u.ID, model.CreateChannelRequest{Name: " Cooking ", Description: "food"}, &logo)
	require.NoError(t, err)
	assert.Equal(t, "Cooking", ch.Name)
	assert.Equal(t, u.ID, ch.OwnerID)
	assert.NotEmpty(t, ch.LogoURL)

	mine, err := h.channels.Mine(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, ch.ID, mine.ID)
}

func TestChannelCreate_SecondChannelRejected(t *testing.T) {
	h := newHarness(t)
	alice := h.signup(t, "alice")

	logo := servicetest.TempFile(t, "logo.png", "image/png", []byte("png"))
	_, err := h.channels.Create(context.Background(), alice.ID, model.CreateChannelRequest{Name: "second"}, &logo)
	require.True(t, apperr.Is(err, apperr.KindConflict))
	assert.False(t, servicetest.Exists(logo.Path))
	assert.Zero(t, h.assets.Backend.Len())
}

func TestChannelCreate_DuplicateNameRemovesLogo(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "alice")
	u := signupWithoutChannel(t, h, "viewer")

	logo := servicetest.TempFile(t, "logo.png", "image/png", []byte("png"))
	_, err := h.channels.Create(context.Background(), u.ID, model.CreateChannelRequest{Name: "ALICE"}, &logo)
	require.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Len(t, h.assets.Deleted(), 1)
	assert.Zero(t, h.assets.Backend.Len())
}

func TestChannelVideos(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.signup(t, "alice")
	bob := h.signup(t, "bob")
	h.upload(t, alice.ID, "one")
	h.upload(t, alice.ID, "two")
	h.upload(t, bob.ID, "other")

	list, err := h.channels.Videos(ctx, *alice.ChannelID, model.NewPage(1, 10))
	require.NoError(t, err)
	assert.Len(t, list.Videos, 2)

	_, err = h.channels.Videos(ctx, "00000000-0000-0000-0000-000000000000", model.NewPage(1, 10))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
