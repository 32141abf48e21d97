package handlers

import (
	"context"

	"go.uber.org/zap"

	"idadmin/application/ports"
	"idadmin/application/queries"
	"idadmin/pkg/auth"
	"idadmin/pkg/errors"
)

// SignInHandler verifies credentials against the identity provider and mints
// an API token for an active account. It is public and mutates nothing; the
// roles embedded in the token come from the user's group memberships.
type SignInHandler struct {
	users    ports.UserRepository
	groups   ports.UserGroupRepository
	identity ports.IdentityProvider
	tokens   *auth.JWTValidator
	logger   *zap.Logger
}

// NewSignInHandler creates a new handler instance
func NewSignInHandler(
	users ports.UserRepository,
	groups ports.UserGroupRepository,
	identity ports.IdentityProvider,
	tokens *auth.JWTValidator,
	logger *zap.Logger,
) *SignInHandler {
	return &SignInHandler{
		users:    users,
		groups:   groups,
		identity: identity,
		tokens:   tokens,
		logger:   logger,
	}
}

// Handle executes the sign-in query
func (h *SignInHandler) Handle(ctx context.Context, q queries.SignInQuery) (*queries.SignInResult, error) {
	verification, err := h.identity.VerifyPassword(ctx, q.Identifier, q.Password)
	if err != nil {
		return nil, err
	}
	if verification == nil {
		// Same error for unknown identifier and wrong password.
		return nil, errors.NewUnauthorizedError("invalid credentials").WithCode("INVALID_CREDENTIALS")
	}

	user, err := h.users.FindByExternalID(ctx, verification.ExternalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewUnauthorizedError("invalid credentials").WithCode("INVALID_CREDENTIALS")
	}
	if !user.IsActive() {
		return nil, errors.NewForbiddenError("account is not active").
			WithCode("ACCOUNT_NOT_ACTIVE").WithDetail("status", string(user.Status()))
	}

	roles, err := h.groups.ListUserRoles(ctx, user.ID())
	if err != nil {
		return nil, err
	}
	token, err := h.tokens.Issue(user.ID(), roles)
	if err != nil {
		return nil, errors.NewInternalError("could not issue token").WithCause(err)
	}

	h.logger.Info("User signed in", zap.String("user_id", user.ID()))
	return &queries.SignInResult{
		UserID: user.ID(),
		Token:  token,
	}, nil
}
