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

// DeleteUserHandler handles the terminal deletion of a user. The repository
// persists the status change, the deleted event and the pending-deletion side
// record in one transaction; an out-of-band purge process consumes the side
// table later.
type DeleteUserHandler struct {
	users      ports.UserRepository
	authorizer *auth.Authorizer
	validator  *services.UserValidator
	dispatcher ports.EventDispatcher
	logger     *zap.Logger
}

// NewDeleteUserHandler creates a new handler instance
func NewDeleteUserHandler(
	users ports.UserRepository,
	authorizer *auth.Authorizer,
	validator *services.UserValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *DeleteUserHandler {
	return &DeleteUserHandler{
		users:      users,
		authorizer: authorizer,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle executes the delete user command
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd commands.DeleteUserCommand) error {
	principal, err := h.authorizer.RequireRole(ctx, entities.RoleAdmin)
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
	if err := user.MarkDeleted(); err != nil {
		return err
	}

	evts := user.Events()
	if err := h.users.Save(ctx, user, nil); err != nil {
		return err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return err
	}

	h.logger.Info("User deleted",
		zap.String("user_id", user.ID()),
		zap.String("operator_id", principal.UserID),
	)
	return nil
}
