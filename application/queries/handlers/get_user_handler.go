package handlers

import (
	"context"

	"go.uber.org/zap"

	"idadmin/application/ports"
	"idadmin/application/queries"
	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/entities"
	"idadmin/pkg/auth"
	"idadmin/pkg/errors"
)

// GetUserHandler serves the user read model. A user may read their own
// record; administrators may read anyone's.
type GetUserHandler struct {
	users      ports.UserRepository
	authorizer *auth.Authorizer
	logger     *zap.Logger
}

// NewGetUserHandler creates a new handler instance
func NewGetUserHandler(users ports.UserRepository, authorizer *auth.Authorizer, logger *zap.Logger) *GetUserHandler {
	return &GetUserHandler{users: users, authorizer: authorizer, logger: logger}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(ctx context.Context, q queries.GetUserQuery) (*queries.UserView, error) {
	principal, err := h.authorizer.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if principal.UserID != q.UserID {
		if _, err := h.authorizer.RequireOneOfRoles(ctx, entities.RoleAdmin, entities.RoleUserAdmin); err != nil {
			return nil, err
		}
	}

	user, err := h.users.FindByID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user").
			WithCode("USER_NOT_FOUND").WithDetail("user_id", q.UserID)
	}

	return UserToView(user), nil
}

// UserToView maps a user aggregate to its read model
func UserToView(user *aggregates.User) *queries.UserView {
	return &queries.UserView{
		ID:           user.ID(),
		Email:        user.Email().String(),
		Username:     user.Username().String(),
		DisplayName:  user.DisplayName(),
		SignInMethod: string(user.SignInMethod()),
		Status:       string(user.Status()),
		Version:      user.Version(),
		CreatedAt:    user.CreatedAt(),
	}
}
