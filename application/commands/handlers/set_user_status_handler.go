package handlers

import (
	"context"

	"go.uber.org/zap"

	"idadmin/application/commands"
	"idadmin/application/ports"
	"idadmin/application/services"
	"idadmin/domain/core/entities"
	"idadmin/pkg/auth"
)

// SetUserStatusHandler handles the reversible lifecycle transitions:
// disabling an active user and enabling a disabled one. Both are
// administrator operations.
type SetUserStatusHandler struct {
	users      ports.UserRepository
	authorizer *auth.Authorizer
	validator  *services.UserValidator
	dispatcher ports.EventDispatcher
	logger     *zap.Logger
}

// NewSetUserStatusHandler creates a new handler instance
func NewSetUserStatusHandler(
	users ports.UserRepository,
	authorizer *auth.Authorizer,
	validator *services.UserValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *SetUserStatusHandler {
	return &SetUserStatusHandler{
		users:      users,
		authorizer: authorizer,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleDisable executes the disable user command
func (h *SetUserStatusHandler) HandleDisable(ctx context.Context, cmd commands.DisableUserCommand) error {
	principal, err := h.authorizer.RequireOneOfRoles(ctx, entities.RoleAdmin, entities.RoleUserAdmin)
	if err != nil {
		return err
	}
	if err := commands.Validate(cmd); err != nil {
		return err
	}

	user, err := h.validator.MustExist(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	user.PrepareUpdate(principal.UserID)
	if err := user.Disable(); err != nil {
		return err
	}

	evts := user.Events()
	if err := h.users.Save(ctx, user, nil); err != nil {
		return err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return err
	}

	h.logger.Info("User disabled",
		zap.String("user_id", user.ID()),
		zap.String("operator_id", principal.UserID),
	)
	return nil
}

// HandleEnable executes the enable user command
func (h *SetUserStatusHandler) HandleEnable(ctx context.Context, cmd commands.EnableUserCommand) error {
	principal, err := h.authorizer.RequireOneOfRoles(ctx, entities.RoleAdmin, entities.RoleUserAdmin)
	if err != nil {
		return err
	}
	if err := commands.Validate(cmd); err != nil {
		return err
	}

	user, err := h.validator.MustExist(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	user.PrepareUpdate(principal.UserID)
	if err := user.Enable(); err != nil {
		return err
	}

	evts := user.Events()
	if err := h.users.Save(ctx, user, nil); err != nil {
		return err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return err
	}

	h.logger.Info("User enabled",
		zap.String("user_id", user.ID()),
		zap.String("operator_id", principal.UserID),
	)
	return nil
}
