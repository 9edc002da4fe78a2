package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.NoError(t, h.Compare(hash, "s3cret"))
	require.Error(t, h.Compare(hash, "wrong"))

	require.NotPanics(t, func() { h.CompareDummy("anything") })
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
}
