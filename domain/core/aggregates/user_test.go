package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idadmin/domain/core/valueobjects"
	"idadmin/domain/events"
	"idadmin/pkg/errors"
)

func mustEmail(t *testing.T, raw string) valueobjects.Email {
	t.Helper()
	email, err := valueobjects.NewEmail(raw)
	require.NoError(t, err)
	return email
}

func mustUsername(t *testing.T, raw string) valueobjects.Username {
	t.Helper()
	username, err := valueobjects.NewUsername(raw)
	require.NoError(t, err)
	return username
}

func newTestUser(t *testing.T) *User {
	t.Helper()
	user, err := NewUser(mustEmail(t, "alice@example.com"), mustUsername(t, "alice"), "Alice", SignInPassword, "ext-1", "")
	require.NoError(t, err)
	return user
}

func TestNewUser(t *testing.T) {
	t.Run("starts at version zero with a created event", func(t *testing.T) {
		user := newTestUser(t)

		assert.NotEmpty(t, user.ID())
		assert.Equal(t, 0, user.Version())
		assert.Equal(t, UserStatusActive, user.Status())
		assert.Equal(t, UserAggregateName, user.AggregateName())

		evts := user.Events()
		require.Len(t, evts, 1)
		assert.Equal(t, events.UserCreated, evts[0].Kind)
		assert.Equal(t, user.ID(), evts[0].AggregateID)
		assert.Equal(t, "alice@example.com", evts[0].Data["email"])
	})

	t.Run("requires email", func(t *testing.T) {
		_, err := NewUser(valueobjects.Email{}, valueobjects.Username{}, "", SignInPassword, "ext-1", "")
		require.Error(t, err)
		assert.Equal(t, "EMAIL_REQUIRED", errors.GetAppError(err).Code)
	})

	t.Run("rejects unknown sign-in method", func(t *testing.T) {
		_, err := NewUser(mustEmail(t, "a@example.com"), valueobjects.Username{}, "", SignInMethod("ldap"), "ext-1", "")
		require.Error(t, err)
		assert.Equal(t, "SIGNIN_METHOD_INVALID", errors.GetAppError(err).Code)
	})

	t.Run("requires external identity reference", func(t *testing.T) {
		_, err := NewUser(mustEmail(t, "a@example.com"), valueobjects.Username{}, "", SignInPassword, "", "")
		require.Error(t, err)
		assert.Equal(t, "EXTERNAL_ID_REQUIRED", errors.GetAppError(err).Code)
	})
}

func TestUserStatusMachine(t *testing.T) {
	t.Run("active to disabled and back", func(t *testing.T) {
		user := newTestUser(t)
		user.ClearEvents()

		require.NoError(t, user.Disable())
		assert.Equal(t, UserStatusDisabled, user.Status())

		require.NoError(t, user.Enable())
		assert.Equal(t, UserStatusActive, user.Status())

		evts := user.Events()
		require.Len(t, evts, 2)
		assert.Equal(t, events.UserDisabled, evts[0].Kind)
		assert.Equal(t, events.UserEnabled, evts[1].Kind)
	})

	t.Run("disable requires active", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, user.Disable())

		err := user.Disable()
		require.Error(t, err)
		assert.Equal(t, "USER_NOT_ACTIVE", errors.GetAppError(err).Code)
	})

	t.Run("enable requires disabled", func(t *testing.T) {
		user := newTestUser(t)

		err := user.Enable()
		require.Error(t, err)
		assert.Equal(t, "USER_NOT_DISABLED", errors.GetAppError(err).Code)
	})

	t.Run("deleted is terminal", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, user.MarkDeleted())
		assert.True(t, user.IsDeleted())

		for _, mutate := range []func() error{
			user.Disable,
			user.Enable,
			user.MarkDeleted,
			func() error { return user.UpdateProfile("x", valueobjects.Username{}) },
		} {
			err := mutate()
			require.Error(t, err)
			assert.Equal(t, "USER_DELETED", errors.GetAppError(err).Code)
		}
	})

	t.Run("disabled user can be deleted", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, user.Disable())
		require.NoError(t, user.MarkDeleted())
		assert.True(t, user.IsDeleted())
	})
}

func TestUserUpdateProfile(t *testing.T) {
	user := newTestUser(t)
	user.ClearEvents()

	require.NoError(t, user.UpdateProfile("Alice B.", mustUsername(t, "aliceb")))
	assert.Equal(t, "Alice B.", user.DisplayName())
	assert.Equal(t, "aliceb", user.Username().String())

	// Zero username clears the handle.
	require.NoError(t, user.UpdateProfile("Alice B.", valueobjects.Username{}))
	assert.True(t, user.Username().IsZero())

	evts := user.Events()
	require.Len(t, evts, 2)
	assert.Equal(t, events.UserUpdated, evts[0].Kind)
}

func TestVersionSemantics(t *testing.T) {
	t.Run("mutations never touch the version", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, user.Disable())
		require.NoError(t, user.Enable())
		require.NoError(t, user.UpdateProfile("x", valueobjects.Username{}))
		assert.Equal(t, 0, user.Version())
	})

	t.Run("advance moves the token forward", func(t *testing.T) {
		user := newTestUser(t)
		user.AdvanceVersion()
		user.AdvanceVersion()
		assert.Equal(t, 2, user.Version())
	})

	t.Run("prepare update stamps the operator", func(t *testing.T) {
		user := newTestUser(t)
		before := time.Now().UTC()
		user.PrepareUpdate("admin-1")

		assert.Equal(t, "admin-1", user.LastModifiedBy())
		assert.False(t, user.LastModifiedAt().Before(before))
	})
}

func TestEventBuffer(t *testing.T) {
	t.Run("events returns a copy", func(t *testing.T) {
		user := newTestUser(t)
		evts := user.Events()
		evts[0].Kind = events.UserDeleted
		assert.Equal(t, events.UserCreated, user.Events()[0].Kind)
	})

	t.Run("clear empties the buffer", func(t *testing.T) {
		user := newTestUser(t)
		user.ClearEvents()
		assert.Empty(t, user.Events())
	})

	t.Run("rehydration records nothing", func(t *testing.T) {
		user := RehydrateUser("id-1", 3, mustEmail(t, "a@example.com"), valueobjects.Username{}, "",
			SignInPassword, UserStatusActive, "ext-1", time.Now(), "", time.Time{}, "")
		assert.Empty(t, user.Events())
		assert.Equal(t, 3, user.Version())
	})
}
