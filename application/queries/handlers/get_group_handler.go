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

// GetGroupHandler serves the group read model, including the role and user
// membership lists from the join tables
type GetGroupHandler struct {
	groups     ports.UserGroupRepository
	authorizer *auth.Authorizer
	logger     *zap.Logger
}

// NewGetGroupHandler creates a new handler instance
func NewGetGroupHandler(groups ports.UserGroupRepository, authorizer *auth.Authorizer, logger *zap.Logger) *GetGroupHandler {
	return &GetGroupHandler{groups: groups, authorizer: authorizer, logger: logger}
}

// Handle executes the get group query
func (h *GetGroupHandler) Handle(ctx context.Context, q queries.GetGroupQuery) (*queries.GroupView, error) {
	if _, err := h.authorizer.RequireOneOfRoles(ctx, entities.RoleAdmin, entities.RoleUserAdmin); err != nil {
		return nil, err
	}

	group, err := h.groups.FindByID(ctx, q.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errors.NewNotFoundError("user group").
			WithCode("GROUP_NOT_FOUND").WithDetail("group_id", q.GroupID)
	}

	roles, err := h.groups.ListGroupRoles(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	users, err := h.groups.ListGroupUsers(ctx, group.ID())
	if err != nil {
		return nil, err
	}

	return GroupToView(group, roles, users), nil
}

// GroupToView maps a group aggregate plus membership lists to its read model
func GroupToView(group *aggregates.UserGroup, roles, users []string) *queries.GroupView {
	if roles == nil {
		roles = []string{}
	}
	if users == nil {
		users = []string{}
	}
	return &queries.GroupView{
		ID:          group.ID(),
		Name:        group.Name().String(),
		Description: group.Description(),
		Version:     group.Version(),
		Roles:       roles,
		Users:       users,
		CreatedAt:   group.CreatedAt(),
	}
}
