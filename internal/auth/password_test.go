package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	require.NoError(t, CheckPassword(hash, "secret1"))
	require.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("secret1")
	require.NoError(t, err)
	b, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
