package aggregates

import (
	"time"

	"github.com/google/uuid"

	"idadmin/domain/core/valueobjects"
	"idadmin/domain/events"
	"idadmin/pkg/errors"
)

// UserGroup is the aggregate root for a named grouping of users under roles.
// Role and user membership live in join tables written through post-save
// callbacks; the aggregate itself stays small and membership checks go
// through repository existence queries, never by loading the whole graph.
type UserGroup struct {
	Base

	name        valueobjects.GroupName
	description string
	deleted     bool
}

// NewUserGroup constructs a new group and records the created event
func NewUserGroup(name valueobjects.GroupName, description, createdBy string) (*UserGroup, error) {
	if name.IsZero() {
		return nil, errors.NewValidationError("group name is required").WithCode("GROUP_NAME_REQUIRED")
	}
	g := &UserGroup{
		Base:        newBase(uuid.New().String(), UserGroupAggregateName, createdBy),
		name:        name,
		description: description,
	}
	g.recordEvent(events.GroupCreated, map[string]interface{}{
		"name": name.String(),
	})
	return g, nil
}

// RehydrateUserGroup reconstructs a group from persisted state without
// recording events
func RehydrateUserGroup(
	id string,
	version int,
	name valueobjects.GroupName,
	description string,
	createdAt time.Time,
	createdBy string,
	lastModifiedAt time.Time,
	lastModifiedBy string,
) *UserGroup {
	return &UserGroup{
		Base:        rehydrateBase(id, UserGroupAggregateName, version, createdAt, createdBy, lastModifiedAt, lastModifiedBy),
		name:        name,
		description: description,
	}
}

// Name returns the globally unique group name
func (g *UserGroup) Name() valueobjects.GroupName { return g.name }

// Description returns the optional description
func (g *UserGroup) Description() string { return g.description }

// UpdateDetails renames the group and replaces the description
func (g *UserGroup) UpdateDetails(name valueobjects.GroupName, description string) error {
	if name.IsZero() {
		return errors.NewValidationError("group name is required").WithCode("GROUP_NAME_REQUIRED")
	}
	g.name = name
	g.description = description
	g.recordEvent(events.GroupUpdated, map[string]interface{}{
		"name": name.String(),
	})
	return nil
}

// AddRole records the role-added event. The join-table insert itself is the
// post-save callback's write, so the row and the event share one transaction.
func (g *UserGroup) AddRole(roleCode string) {
	g.recordEvent(events.GroupRoleAdded, map[string]interface{}{
		"role_code": roleCode,
	})
}

// RemoveRole records the role-removed event
func (g *UserGroup) RemoveRole(roleCode string) {
	g.recordEvent(events.GroupRoleRemoved, map[string]interface{}{
		"role_code": roleCode,
	})
}

// AddUser records the user-added event
func (g *UserGroup) AddUser(userID string) {
	g.recordEvent(events.GroupUserAdded, map[string]interface{}{
		"user_id": userID,
	})
}

// RemoveUser records the user-removed event
func (g *UserGroup) RemoveUser(userID string) {
	g.recordEvent(events.GroupUserRemoved, map[string]interface{}{
		"user_id": userID,
	})
}

// MarkDeleted records the deleted event prior to a repository Delete call
func (g *UserGroup) MarkDeleted() {
	g.deleted = true
	g.recordEvent(events.GroupDeleted, map[string]interface{}{
		"name": g.name.String(),
	})
}
