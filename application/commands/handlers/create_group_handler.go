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

// CreateGroupHandler handles user group creation
type CreateGroupHandler struct {
	groups     ports.UserGroupRepository
	authorizer *auth.Authorizer
	validator  *services.GroupValidator
	dispatcher ports.EventDispatcher
	logger     *zap.Logger
}

// NewCreateGroupHandler creates a new handler instance
func NewCreateGroupHandler(
	groups ports.UserGroupRepository,
	authorizer *auth.Authorizer,
	validator *services.GroupValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *CreateGroupHandler {
	return &CreateGroupHandler{
		groups:     groups,
		authorizer: authorizer,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle executes the create group command
func (h *CreateGroupHandler) Handle(ctx context.Context, cmd commands.CreateGroupCommand) (*aggregates.UserGroup, error) {
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
	if err := h.validator.NameAvailable(ctx, name, ""); err != nil {
		return nil, err
	}

	group, err := aggregates.NewUserGroup(name, cmd.Description, principal.UserID)
	if err != nil {
		return nil, err
	}

	evts := group.Events()
	if err := h.groups.Save(ctx, group, nil); err != nil {
		return nil, err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return nil, err
	}

	h.logger.Info("User group created",
		zap.String("group_id", group.ID()),
		zap.String("name", name.String()),
		zap.String("operator_id", principal.UserID),
	)
	return group, nil
}
