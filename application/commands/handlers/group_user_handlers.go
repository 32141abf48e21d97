package handlers

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"idadmin/application/commands"
	"idadmin/application/ports"
	"idadmin/application/services"
	"idadmin/domain/core/entities"
	"idadmin/pkg/auth"
)

// GroupUserHandler handles placing users in and removing users from a group.
// The user side is only read and validated (the member must be active for an
// add); persistence goes through the group repository with a join-table
// callback, keeping a single transaction boundary.
type GroupUserHandler struct {
	groups         ports.UserGroupRepository
	authorizer     *auth.Authorizer
	groupValidator *services.GroupValidator
	userValidator  *services.UserValidator
	dispatcher     ports.EventDispatcher
	logger         *zap.Logger
}

// NewGroupUserHandler creates a new handler instance
func NewGroupUserHandler(
	groups ports.UserGroupRepository,
	authorizer *auth.Authorizer,
	groupValidator *services.GroupValidator,
	userValidator *services.UserValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *GroupUserHandler {
	return &GroupUserHandler{
		groups:         groups,
		authorizer:     authorizer,
		groupValidator: groupValidator,
		userValidator:  userValidator,
		dispatcher:     dispatcher,
		logger:         logger,
	}
}

// HandleAdd executes the add user to group command
func (h *GroupUserHandler) HandleAdd(ctx context.Context, cmd commands.AddUserToGroupCommand) error {
	principal, err := h.authorizer.RequireOneOfRoles(ctx, entities.RoleAdmin, entities.RoleUserAdmin)
	if err != nil {
		return err
	}
	if err := commands.Validate(cmd); err != nil {
		return err
	}

	group, err := h.groupValidator.MustExist(ctx, cmd.GroupID)
	if err != nil {
		return err
	}
	if _, err := h.userValidator.MustBeActive(ctx, cmd.UserID); err != nil {
		return err
	}
	if err := h.groupValidator.UserNotInGroup(ctx, group.ID(), cmd.UserID); err != nil {
		return err
	}

	group.PrepareUpdate(principal.UserID)
	group.AddUser(cmd.UserID)

	evts := group.Events()
	err = h.groups.Save(ctx, group, func(ctx context.Context, tx *sql.Tx) error {
		return h.groups.AddUserMember(ctx, tx, group.ID(), cmd.UserID)
	})
	if err != nil {
		return err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return err
	}

	h.logger.Info("User added to group",
		zap.String("group_id", group.ID()),
		zap.String("user_id", cmd.UserID),
		zap.String("operator_id", principal.UserID),
	)
	return nil
}

// HandleRemove executes the remove user from group command
func (h *GroupUserHandler) HandleRemove(ctx context.Context, cmd commands.RemoveUserFromGroupCommand) error {
	principal, err := h.authorizer.RequireOneOfRoles(ctx, entities.RoleAdmin, entities.RoleUserAdmin)
	if err != nil {
		return err
	}
	if err := commands.Validate(cmd); err != nil {
		return err
	}

	group, err := h.groupValidator.MustExist(ctx, cmd.GroupID)
	if err != nil {
		return err
	}
	if err := h.groupValidator.UserInGroup(ctx, group.ID(), cmd.UserID); err != nil {
		return err
	}

	group.PrepareUpdate(principal.UserID)
	group.RemoveUser(cmd.UserID)

	evts := group.Events()
	err = h.groups.Save(ctx, group, func(ctx context.Context, tx *sql.Tx) error {
		return h.groups.RemoveUserMember(ctx, tx, group.ID(), cmd.UserID)
	})
	if err != nil {
		return err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return err
	}

	h.logger.Info("User removed from group",
		zap.String("group_id", group.ID()),
		zap.String("user_id", cmd.UserID),
		zap.String("operator_id", principal.UserID),
	)
	return nil
}
