package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"idadmin/application/ports"
	"idadmin/application/queries"
	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/entities"
	"idadmin/domain/core/valueobjects"
	"idadmin/pkg/auth"
	"idadmin/pkg/common"
	"idadmin/pkg/errors"
)

// Read-side stubs: the embedded interface satisfies the contract, only the
// methods a query actually reaches are implemented.

type stubUserRepo struct {
	ports.UserRepository
	byID       map[string]*aggregates.User
	byExternal map[string]*aggregates.User
}

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*aggregates.User, error) {
	return s.byID[id], nil
}

func (s *stubUserRepo) FindByExternalID(ctx context.Context, externalID string) (*aggregates.User, error) {
	return s.byExternal[externalID], nil
}

type stubGroupRepo struct {
	ports.UserGroupRepository
	byID      map[string]*aggregates.UserGroup
	roles     map[string][]string
	users     map[string][]string
	userRoles map[string][]string
}

func (s *stubGroupRepo) FindByID(ctx context.Context, id string) (*aggregates.UserGroup, error) {
	return s.byID[id], nil
}

func (s *stubGroupRepo) ListGroupRoles(ctx context.Context, groupID string) ([]string, error) {
	return s.roles[groupID], nil
}

func (s *stubGroupRepo) ListGroupUsers(ctx context.Context, groupID string) ([]string, error) {
	return s.users[groupID], nil
}

func (s *stubGroupRepo) ListUserRoles(ctx context.Context, userID string) ([]string, error) {
	return s.userRoles[userID], nil
}

type stubIdentity struct {
	ports.IdentityProvider
	verifications map[string]*ports.PasswordVerification
}

func (s *stubIdentity) VerifyPassword(ctx context.Context, identifier, secret string) (*ports.PasswordVerification, error) {
	v := s.verifications[identifier+"/"+secret]
	return v, nil
}

func stubUser(t *testing.T, emailAddr, externalID string, status aggregates.UserStatus) *aggregates.User {
	t.Helper()
	email, err := valueobjects.NewEmail(emailAddr)
	require.NoError(t, err)
	user, err := aggregates.NewUser(email, valueobjects.Username{}, "Someone", aggregates.SignInPassword, externalID, "")
	require.NoError(t, err)
	user.ClearEvents()
	if status == aggregates.UserStatusDisabled {
		require.NoError(t, user.Disable())
		user.ClearEvents()
	}
	return user
}

func principalCtx(userID string, roles ...string) context.Context {
	return common.WithPrincipal(context.Background(), &common.Principal{UserID: userID, Roles: roles})
}

func TestGetUserHandler(t *testing.T) {
	user := stubUser(t, "alice@example.com", "ext-1", aggregates.UserStatusActive)
	users := &stubUserRepo{byID: map[string]*aggregates.User{user.ID(): user}}
	h := NewGetUserHandler(users, auth.NewAuthorizer(), zap.NewNop())

	t.Run("self read", func(t *testing.T) {
		view, err := h.Handle(principalCtx(user.ID()), queries.GetUserQuery{UserID: user.ID()})
		require.NoError(t, err)
		assert.Equal(t, user.ID(), view.ID)
		assert.Equal(t, "alice@example.com", view.Email)
		assert.Equal(t, "ACTIVE", view.Status)
		assert.Equal(t, 0, view.Version)
	})

	t.Run("admin reads anyone", func(t *testing.T) {
		_, err := h.Handle(principalCtx("op-1", entities.RoleUserAdmin), queries.GetUserQuery{UserID: user.ID()})
		require.NoError(t, err)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		_, err := h.Handle(principalCtx("op-1"), queries.GetUserQuery{UserID: user.ID()})
		require.Error(t, err)
		assert.True(t, errors.IsForbidden(err))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := h.Handle(principalCtx("op-1", entities.RoleAdmin), queries.GetUserQuery{UserID: "missing"})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestGetGroupHandler(t *testing.T) {
	name, err := valueobjects.NewGroupName("Admins")
	require.NoError(t, err)
	group, err := aggregates.NewUserGroup(name, "ops", "admin-1")
	require.NoError(t, err)

	groups := &stubGroupRepo{
		byID:  map[string]*aggregates.UserGroup{group.ID(): group},
		roles: map[string][]string{group.ID(): {"ADMIN"}},
		users: map[string][]string{group.ID(): {"user-1", "user-2"}},
	}
	h := NewGetGroupHandler(groups, auth.NewAuthorizer(), zap.NewNop())

	t.Run("returns membership lists", func(t *testing.T) {
		view, err := h.Handle(principalCtx("op-1", entities.RoleAdmin), queries.GetGroupQuery{GroupID: group.ID()})
		require.NoError(t, err)
		assert.Equal(t, "Admins", view.Name)
		assert.Equal(t, []string{"ADMIN"}, view.Roles)
		assert.Equal(t, []string{"user-1", "user-2"}, view.Users)
	})

	t.Run("empty memberships are empty lists not null", func(t *testing.T) {
		other, err := aggregates.NewUserGroup(name, "", "")
		require.NoError(t, err)
		groups.byID[other.ID()] = other

		view, err := h.Handle(principalCtx("op-1", entities.RoleAdmin), queries.GetGroupQuery{GroupID: other.ID()})
		require.NoError(t, err)
		assert.NotNil(t, view.Roles)
		assert.Empty(t, view.Roles)
	})

	t.Run("plain members are forbidden", func(t *testing.T) {
		_, err := h.Handle(principalCtx("op-1", entities.RoleMember), queries.GetGroupQuery{GroupID: group.ID()})
		require.Error(t, err)
		assert.True(t, errors.IsForbidden(err))
	})
}

func TestSignInHandler(t *testing.T) {
	newValidator := func(t *testing.T) *auth.JWTValidator {
		t.Helper()
		v, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: "test-secret",
			Issuer:    "idadmin",
			Audience:  "idadmin-api",
			TokenTTL:  time.Minute,
		})
		require.NoError(t, err)
		return v
	}

	active := stubUser(t, "alice@example.com", "ext-1", aggregates.UserStatusActive)
	disabled := stubUser(t, "bob@example.com", "ext-2", aggregates.UserStatusDisabled)

	users := &stubUserRepo{byExternal: map[string]*aggregates.User{
		"ext-1": active,
		"ext-2": disabled,
	}}
	groups := &stubGroupRepo{userRoles: map[string][]string{
		active.ID(): {"ADMIN", "MEMBER"},
	}}
	identity := &stubIdentity{verifications: map[string]*ports.PasswordVerification{
		"alice@example.com/good": {ExternalID: "ext-1", Token: "provider-token"},
		"bob@example.com/good":   {ExternalID: "ext-2", Token: "provider-token"},
		"ghost@example.com/good": {ExternalID: "ext-9", Token: "provider-token"},
	}}

	validator := newValidator(t)
	h := NewSignInHandler(users, groups, identity, validator, zap.NewNop())

	t.Run("mints a token carrying the user's roles", func(t *testing.T) {
		result, err := h.Handle(context.Background(), queries.SignInQuery{
			Identifier: "alice@example.com",
			Password:   "good",
		})
		require.NoError(t, err)
		assert.Equal(t, active.ID(), result.UserID)

		claims, err := validator.Validate(result.Token)
		require.NoError(t, err)
		assert.Equal(t, active.ID(), claims.UserID)
		assert.Equal(t, []string{"ADMIN", "MEMBER"}, claims.Roles)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := h.Handle(context.Background(), queries.SignInQuery{
			Identifier: "alice@example.com",
			Password:   "bad",
		})
		require.Error(t, err)
		assert.True(t, errors.IsUnauthorized(err))
		assert.Equal(t, "INVALID_CREDENTIALS", errors.GetAppError(err).Code)
	})

	t.Run("identity with no account", func(t *testing.T) {
		_, err := h.Handle(context.Background(), queries.SignInQuery{
			Identifier: "ghost@example.com",
			Password:   "good",
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_CREDENTIALS", errors.GetAppError(err).Code)
	})

	t.Run("disabled account", func(t *testing.T) {
		_, err := h.Handle(context.Background(), queries.SignInQuery{
			Identifier: "bob@example.com",
			Password:   "good",
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbidden(err))
		assert.Equal(t, "ACCOUNT_NOT_ACTIVE", errors.GetAppError(err).Code)
	})
}
