package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewULIDIsValid(t *testing.T) {
	id, err := NewULID()
	require.NoError(t, err)
	require.Len(t, id, 26)
	require.True(t, IsULID(id))
}

func TestIsULID(t *testing.T) {
	require.True(t, IsULID("01HQZX3Y4K6F7G8H9J0K1M2N3P"))
	require.True(t, IsULID(" 01hqzx3y4k6f7g8h9j0k1m2n3p "))
	require.False(t, IsULID("not-a-ulid"))
	require.False(t, IsULID(""))
	require.False(t, IsULID("01HQZX3Y4K6F7G8H9J0K1M2N3")) // 25 chars
}

func TestValidateULID(t *testing.T) {
	require.NoError(t, ValidateULID("01HQZX3Y4K6F7G8H9J0K1M2N3P"))
	require.ErrorIs(t, ValidateULID("xyz"), ErrInvalidULID)
}

func TestNewUUID(t *testing.T) {
	a := NewUUID()
	b := NewUUID()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
