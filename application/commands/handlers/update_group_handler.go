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

// UpdateGroupHandler handles group rename and description changes
type UpdateGroupHandler struct {
	groups     ports.UserGroupRepository
	authorizer *auth.Authorizer
	validator  *services.GroupValidator
	dispatcher ports.EventDispatcher
	logger     *zap.Logger
}

// NewUpdateGroupHandler creates a new handler instance
func NewUpdateGroupHandler(
	groups ports.UserGroupRepository,
	authorizer *auth.Authorizer,
	validator *services.GroupValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *UpdateGroupHandler {
	return &UpdateGroupHandler{
		groups:     groups,
		authorizer: authorizer,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle executes the update group command
func (h *UpdateGroupHandler) Handle(ctx context.Context, cmd commands.UpdateGroupCommand) (*aggregates.UserGroup, error) {
	principal, err := h.authorizer.RequireRole(ctx, entities.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := commands.Validate(cmd); err != nil {
		return nil, err
	}

	name, err := valueobjects.NewGroupName(cmd.Name)
	if err != nil {
		return nil, err
	}

	group, err := h.validator.MustExist(ctx, cmd.GroupID)
	if err != nil {
		return nil, err
	}
	if err := h.validator.NameAvailable(ctx, name, group.ID()); err != nil {
		return nil, err
	}

	group.PrepareUpdate(principal.UserID)
	if err := group.UpdateDetails(name, cmd.Description); err != nil {
		return nil, err
	}

	evts := group.Events()
	if err := h.groups.Save(ctx, group, nil); err != nil {
		return nil, err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return nil, err
	}

	h.logger.Info("User group updated",
		zap.String("group_id", group.ID()),
		zap.String("operator_id", principal.UserID),
	)
	return group, nil
}
