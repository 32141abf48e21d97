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

// GroupRoleHandler handles granting and revoking roles on a group. This is a
// cross-aggregate flow: the role is only read and validated, while the group
// is the persisted side. Its repository runs the join-table write through a
// post-save callback so the row, the event and the membership change commit
// together.
type GroupRoleHandler struct {
	groups     ports.UserGroupRepository
	authorizer *auth.Authorizer
	validator  *services.GroupValidator
	dispatcher ports.EventDispatcher
	logger     *zap.Logger
}

// NewGroupRoleHandler creates a new handler instance
func NewGroupRoleHandler(
	groups ports.UserGroupRepository,
	authorizer *auth.Authorizer,
	validator *services.GroupValidator,
	dispatcher ports.EventDispatcher,
	logger *zap.Logger,
) *GroupRoleHandler {
	return &GroupRoleHandler{
		groups:     groups,
		authorizer: authorizer,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleAdd executes the add role to group command
func (h *GroupRoleHandler) HandleAdd(ctx context.Context, cmd commands.AddRoleToGroupCommand) error {
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
	if _, err := h.validator.RoleMustExist(ctx, cmd.RoleCode); err != nil {
		return err
	}
	if err := h.validator.RoleNotInGroup(ctx, group.ID(), cmd.RoleCode); err != nil {
		return err
	}

	group.PrepareUpdate(principal.UserID)
	group.AddRole(cmd.RoleCode)

	evts := group.Events()
	err = h.groups.Save(ctx, group, func(ctx context.Context, tx *sql.Tx) error {
		return h.groups.AddRoleMember(ctx, tx, group.ID(), cmd.RoleCode)
	})
	if err != nil {
		return err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return err
	}

	h.logger.Info("Role added to group",
		zap.String("group_id", group.ID()),
		zap.String("role_code", cmd.RoleCode),
		zap.String("operator_id", principal.UserID),
	)
	return nil
}

// HandleRemove executes the remove role from group command
func (h *GroupRoleHandler) HandleRemove(ctx context.Context, cmd commands.RemoveRoleFromGroupCommand) error {
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
	if err := h.validator.RoleInGroup(ctx, group.ID(), cmd.RoleCode); err != nil {
		return err
	}

	group.PrepareUpdate(principal.UserID)
	group.RemoveRole(cmd.RoleCode)

	evts := group.Events()
	err = h.groups.Save(ctx, group, func(ctx context.Context, tx *sql.Tx) error {
		return h.groups.RemoveRoleMember(ctx, tx, group.ID(), cmd.RoleCode)
	})
	if err != nil {
		return err
	}
	if err := h.dispatcher.Dispatch(ctx, evts); err != nil {
		return err
	}

	h.logger.Info("Role removed from group",
		zap.String("group_id", group.ID()),
		zap.String("role_code", cmd.RoleCode),
		zap.String("operator_id", principal.UserID),
	)
	return nil
}
