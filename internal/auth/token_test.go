package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/rajbhoyar729/LokDarpan/internal/model"
)

func testUser() *model.User {
	ch := "chan-1"
	return &model.User{
		ID:        "user-1",
		Name:      "Foo",
		Email:     "a@b.com",
		Phone:     "1234567890",
		ChannelID: &ch,
	}
}

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "Foo", claims.Name)
	require.Equal(t, "a@b.com", claims.Email)
	require.Equal(t, "1234567890", claims.Phone)
	require.Equal(t, "chan-1", claims.ChannelID)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingExpiry(t *testing.T) {
	claims := Claims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
