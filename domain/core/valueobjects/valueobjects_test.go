package valueobjects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idadmin/pkg/errors"
)

func TestNewEmail(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		email, err := NewEmail("  Alice@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", email.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NewEmail("   ")
		require.Error(t, err)
		assert.Equal(t, "EMAIL_REQUIRED", errors.GetAppError(err).Code)
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		for _, raw := range []string{"not-an-email", "a@b", "@example.com", "a b@example.com"} {
			_, err := NewEmail(raw)
			require.Error(t, err, raw)
			assert.Equal(t, "EMAIL_INVALID", errors.GetAppError(err).Code, raw)
		}
	})

	t.Run("rejects overlong addresses", func(t *testing.T) {
		_, err := NewEmail(strings.Repeat("a", 250) + "@example.com")
		require.Error(t, err)
	})

	t.Run("case-insensitive equality", func(t *testing.T) {
		a, err := NewEmail("alice@example.com")
		require.NoError(t, err)
		b, err := NewEmail("ALICE@example.com")
		require.NoError(t, err)
		assert.True(t, a.Equals(b))
	})

	t.Run("zero value", func(t *testing.T) {
		assert.True(t, Email{}.IsZero())
	})
}

func TestNewUsername(t *testing.T) {
	t.Run("accepts and normalizes handles", func(t *testing.T) {
		u, err := NewUsername(" Alice_01 ")
		require.NoError(t, err)
		assert.Equal(t, "alice_01", u.String())
	})

	t.Run("rejects short and illegal handles", func(t *testing.T) {
		for _, raw := range []string{"ab", "_leading", "has space", strings.Repeat("x", 33)} {
			_, err := NewUsername(raw)
			require.Error(t, err, raw)
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NewUsername("")
		require.Error(t, err)
		assert.Equal(t, "USERNAME_REQUIRED", errors.GetAppError(err).Code)
	})
}

func TestNewGroupName(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		name, err := NewGroupName("  Admins  ")
		require.NoError(t, err)
		assert.Equal(t, "Admins", name.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NewGroupName("   ")
		require.Error(t, err)
		assert.Equal(t, "GROUP_NAME_REQUIRED", errors.GetAppError(err).Code)
	})

	t.Run("rejects names over 100 runes", func(t *testing.T) {
		_, err := NewGroupName(strings.Repeat("x", 101))
		require.Error(t, err)
		assert.Equal(t, "GROUP_NAME_TOO_LONG", errors.GetAppError(err).Code)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		_, err := NewGroupName(strings.Repeat("ü", 100))
		require.NoError(t, err)
	})
}
