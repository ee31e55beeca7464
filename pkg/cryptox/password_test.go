package cryptox_test

import (
	"testing"

	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHasherRoundTrip(t *testing.T) {
	t.Parallel()

	h, err := cryptox.NewHasher(cryptox.MinPasswordCost)
	require.NoError(t, err)

	hash, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)
	require.NotEqual(t, "Str0ng!Pass", hash)

	require.NoError(t, h.Verify("Str0ng!Pass", hash))
	require.ErrorIs(t, h.Verify("wrong-password", hash), cryptox.ErrPasswordMismatch)
}

func TestHasherSaltsEachHash(t *testing.T) {
	t.Parallel()

	h, err := cryptox.NewHasher(cryptox.MinPasswordCost)
	require.NoError(t, err)

	a, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)
	b, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestNewHasherRejectsWeakCost(t *testing.T) {
	t.Parallel()

	_, err := cryptox.NewHasher(4)
	require.Error(t, err)

	h, err := cryptox.NewHasher(0)
	require.NoError(t, err)
	require.Equal(t, cryptox.DefaultPasswordCost, h.Cost())
}
