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

// DeleteGroupHandler handles group removal. Unlike users, groups have no
// terminal in-place status: the row is deleted outright, with the deleted
// event persisted in the same transaction.
type DeleteGroupHandler struct {
	groups     ports.UserGroupRepository
	authorizer *auth.Authorizer
	validator  *services.GroupValidator
	dispatcher ports.EventDispatcher
	logger     *zap.Logger
}

// NewDeleteGroupHandler creates a new handler instance
func NewDeleteGroupHandler(
	groups ports.UserGroupRepository,
	authorizer *auth.Authorizer,
	validator *services.GroupValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *DeleteGroupHandler {
	return &DeleteGroupHandler{
		groups:     groups,
		authorizer: authorizer,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle executes the delete group command
func (h *DeleteGroupHandler) Handle(ctx context.Context, cmd commands.DeleteGroupCommand) error {
	principal, err := h.authorizer.RequireRole(ctx, entities.RoleAdmin)
	if err != nil {
		return err
	}
	if err := commands.Validate(cmd); err != nil {
		return err
	}

	group, err := h.validator.MustExist(ctx, cmd.GroupID)
	if err != nil {
		return err
	}

	group.MarkDeleted()

	evts := group.Events()
	if err := h.groups.Delete(ctx, group); err != nil {
		return err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return err
	}

	h.logger.Info("User group deleted",
		zap.String("group_id", group.ID()),
		zap.String("operator_id", principal.UserID),
	)
	return nil
}
