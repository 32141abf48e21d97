package services

import (
	"context"

	"idadmin/application/ports"
	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/entities"
	"idadmin/domain/core/valueobjects"
	"idadmin/pkg/errors"
)

// GroupValidator runs the read-only checks for group commands: existence,
// name uniqueness and membership state. Membership is checked through
// repository existence queries, never by loading the whole membership graph.
type GroupValidator struct {
	groups ports.UserGroupRepository
	roles  ports.RoleRepository
}

// NewGroupValidator creates a group validator
func NewGroupValidator(groups ports.UserGroupRepository, roles ports.RoleRepository) *GroupValidator {
	return &GroupValidator{groups: groups, roles: roles}
}

// MustExist loads the group or fails with a not-found error
func (v *GroupValidator) MustExist(ctx context.Context, id string) (*aggregates.UserGroup, error) {
	group, err := v.groups.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errors.NewNotFoundError("user group").
			WithCode("GROUP_NOT_FOUND").WithDetail("group_id", id)
	}
	return group, nil
}

// NameAvailable fails with a conflict when another group already holds the
// name. excludeID skips the group's own row on renames.
func (v *GroupValidator) NameAvailable(ctx context.Context, name valueobjects.GroupName, excludeID string) error {
	taken, err := v.groups.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.NewConflictError("group name is already in use").
			WithCode("GROUP_NAME_TAKEN").WithDetail("field", "name")
	}
	return nil
}

// RoleMustExist loads the role or fails with a not-found error
func (v *GroupValidator) RoleMustExist(ctx context.Context, code string) (*entities.Role, error) {
	role, err := v.roles.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NewNotFoundError("role").
			WithCode("ROLE_NOT_FOUND").WithDetail("role_code", code)
	}
	return role, nil
}

// RoleNotInGroup fails with a validation error when the role is already a
// member of the group
func (v *GroupValidator) RoleNotInGroup(ctx context.Context, groupID, roleCode string) error {
	present, err := v.groups.RoleInGroup(ctx, groupID, roleCode)
	if err != nil {
		return err
	}
	if present {
		return errors.NewValidationError("role is already in group").
			WithCode("ROLE_ALREADY_IN_GROUP").
			WithDetail("group_id", groupID).
			WithDetail("role_code", roleCode)
	}
	return nil
}

// RoleInGroup fails with a validation error when the role is not a member of
// the group
func (v *GroupValidator) RoleInGroup(ctx context.Context, groupID, roleCode string) error {
	present, err := v.groups.RoleInGroup(ctx, groupID, roleCode)
	if err != nil {
		return err
	}
	if !present {
		return errors.NewValidationError("role is not in group").
			WithCode("ROLE_NOT_IN_GROUP").
			WithDetail("group_id", groupID).
			WithDetail("role_code", roleCode)
	}
	return nil
}

// UserNotInGroup fails with a validation error when the user is already a
// member of the group
func (v *GroupValidator) UserNotInGroup(ctx context.Context, groupID, userID string) error {
	present, err := v.groups.UserInGroup(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if present {
		return errors.NewValidationError("user is already in group").
			WithCode("USER_ALREADY_IN_GROUP").
			WithDetail("group_id", groupID).
			WithDetail("user_id", userID)
	}
	return nil
}

// UserInGroup fails with a validation error when the user is not a member of
// the group
func (v *GroupValidator) UserInGroup(ctx context.Context, groupID, userID string) error {
	present, err := v.groups.UserInGroup(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !present {
		return errors.NewValidationError("user is not in group").
			WithCode("USER_NOT_IN_GROUP").
			WithDetail("group_id", groupID).
			WithDetail("user_id", userID)
	}
	return nil
}
