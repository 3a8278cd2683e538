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

func TestSignupLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.auth.Signup(ctx, model.SignupRequest{
		ChannelName: "a",
		Email:       "A@X.io",
		Phone:       "9876543210",
		Password:    "secret123",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	require.NotNil(t, u.ChannelID)

	res, err := h.auth.Login(ctx, model.LoginRequest{Email: "a@x.io", Password: "secret123"})
	require.NoError(t, err)
	claims, err := h.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = h.auth.Login(ctx, model.LoginRequest{Email: "a@x.io", Password: "wrong"})
	require.True(t, apperr.Is(err, apperr.KindAuthentication))
	assert.Equal(t, "Invalid password", err.(*apperr.Error).Message)

	_, err = h.auth.Login(ctx, model.LoginRequest{Email: "nobody@x.io", Password: "secret123"})
	require.True(t, apperr.Is(err, apperr.KindAuthentication))
	assert.Equal(t, "User not found", err.(*apperr.Error).Message)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signup(t, "alice")

	_, err := h.auth.Signup(ctx, model.SignupRequest{
		ChannelName: "alice2",
		Email:       "ALICE@example.com",
		Password:    "secret123",
	}, nil)
	require.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, "Email already exists", err.(*apperr.Error).Message)
}

func TestSignup_DuplicateChannelName(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "alice")

	_, err := h.auth.Signup(context.Background(), model.SignupRequest{
		ChannelName: "Alice",
		Email:       "other@example.com",
		Password:    "secret123",
	}, nil)
	require.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, "Channel name already exists", err.(*apperr.Error).Message)
}

func TestSignup_WithLogo(t *testing.T) {
	h := newHarness(t)
	logo := servicetest.TempFile(t, "logo.png", "image/png", []byte("png"))

	u, err := h.auth.Signup(context.Background(), model.SignupRequest{
		Name:     "studio",
		Email:    "studio@example.com",
		Password: "secret123",
	}, &logo)
	require.NoError(t, err)
	require.NotNil(t, u.ChannelID)

	ch, err := h.channels.Get(context.Background(), *u.ChannelID)
	require.NoError(t, err)
	assert.NotEmpty(t, ch.LogoURL)
	assert.Equal(t, 1, h.assets.Backend.Len())
	assert.False(t, servicetest.Exists(logo.Path))
}

func TestSignup_BadLogoType(t *testing.T) {
	h := newHarness(t)
	logo := servicetest.TempFile(t, "logo.gif", "image/gif", []byte("gif"))

	_, err := h.auth.Signup(context.Background(), model.SignupRequest{
		Name:     "studio",
		Email:    "studio@example.com",
		Password: "secret123",
	}, &logo)
	require.True(t, apperr.Is(err, apperr.KindValidation))
	assert.False(t, servicetest.Exists(logo.Path))
	assert.Zero(t, h.assets.Backend.Len())
}

func TestSignup_WithoutChannel(t *testing.T) {
	h := newHarness(t)
	u, err := h.auth.Signup(context.Background(), model.SignupRequest{
		Name:     "viewer",
		Email:    "viewer@example.com",
		Password: "secret123",
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, u.ChannelID)

	me, err := h.auth.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "viewer", me.Name)
}
