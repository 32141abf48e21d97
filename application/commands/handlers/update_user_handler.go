package handlers

import (
	"context"

	"go.uber.org/zap"

	"idadmin/application/commands"
	"idadmin/application/ports"
	"idadmin/application/services"
	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/entities"
	"idadmin/domain/core/valueobjects"
	"idadmin/pkg/auth"
)

// UpdateUserProfileHandler handles profile updates. A user may update their
// own profile; administrators may update anyone's.
type UpdateUserProfileHandler struct {
	users      ports.UserRepository
	authorizer *auth.Authorizer
	validator  *services.UserValidator
	dispatcher ports.EventDispatcher
	logger     *zap.Logger
}

// NewUpdateUserProfileHandler creates a new handler instance
func NewUpdateUserProfileHandler(
	users ports.UserRepository,
	authorizer *auth.Authorizer,
	validator *services.UserValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *UpdateUserProfileHandler {
	return &UpdateUserProfileHandler{
		users:      users,
		authorizer: authorizer,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle executes the update user profile command
func (h *UpdateUserProfileHandler) Handle(ctx context.Context, cmd commands.UpdateUserProfileCommand) (*aggregates.User, error) {
	principal, err := h.authorizer.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if principal.UserID != cmd.UserID {
		if _, err := h.authorizer.RequireOneOfRoles(ctx, entities.RoleAdmin, entities.RoleUserAdmin); err != nil {
			return nil, err
		}
	}

	if err := commands.Validate(cmd); err != nil {
		return nil, err
	}

	var username valueobjects.Username
	if cmd.Username != "" {
		if username, err = valueobjects.NewUsername(cmd.Username); err != nil {
			return nil, err
		}
	}

	user, err := h.validator.MustExist(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := h.validator.UsernameAvailable(ctx, username, user.ID()); err != nil {
		return nil, err
	}

	user.PrepareUpdate(principal.UserID)
	if err := user.UpdateProfile(cmd.DisplayName, username); err != nil {
		return nil, err
	}

	evts := user.Events()
	if err := h.users.Save(ctx, user, nil); err != nil {
		return nil, err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return nil, err
	}

	h.logger.Info("User profile updated",
		zap.String("user_id", user.ID()),
		zap.String("operator_id", principal.UserID),
	)
	return user, nil
}
