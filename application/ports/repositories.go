package ports

import (
	"context"
	"database/sql"

	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/entities"
	"idadmin/domain/core/valueobjects"
)

// PostSaveCallback runs inside the repository's transaction, after the
// aggregate row and its events have been written but before commit. It
// receives a handle to the active transaction so a handler can perform an
// additional write (a join-table insert, typically) atomically with the save.
// Any error aborts the whole transaction.
type PostSaveCallback func(ctx context.Context, tx *sql.Tx) error

// UserRepository persists User aggregates.
//
// Save determines create-vs-update from the aggregate version: version 0 with
// no existing row is an insert, anything else is a conditional update checked
// against the stored version. Pending events are appended in the same
// transaction and the buffer is cleared on success. A transition to the
// DELETED status additionally upserts a pending-deletion side record.
// Finders return (nil, nil) when no row matches; absence is not an error at
// this layer.
type UserRepository interface {
	Save(ctx context.Context, user *aggregates.User, postSave PostSaveCallback) error
	FindByID(ctx context.Context, id string) (*aggregates.User, error)
	FindByEmail(ctx context.Context, email valueobjects.Email) (*aggregates.User, error)
	FindByUsername(ctx context.Context, username valueobjects.Username) (*aggregates.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*aggregates.User, error)
	ExistsByEmail(ctx context.Context, email valueobjects.Email, excludeID string) (bool, error)
	ExistsByUsername(ctx context.Context, username valueobjects.Username, excludeID string) (bool, error)
}

// UserGroupRepository persists UserGroup aggregates and owns the role/user
// membership join tables. Membership writes run through the Save transaction
// via PostSaveCallback; the *Member methods are the writes a callback may
// perform.
type UserGroupRepository interface {
	Save(ctx context.Context, group *aggregates.UserGroup, postSave PostSaveCallback) error
	Delete(ctx context.Context, group *aggregates.UserGroup) error
	FindByID(ctx context.Context, id string) (*aggregates.UserGroup, error)
	FindByName(ctx context.Context, name valueobjects.GroupName) (*aggregates.UserGroup, error)
	ExistsByName(ctx context.Context, name valueobjects.GroupName, excludeID string) (bool, error)

	RoleInGroup(ctx context.Context, groupID, roleCode string) (bool, error)
	UserInGroup(ctx context.Context, groupID, userID string) (bool, error)
	ListGroupRoles(ctx context.Context, groupID string) ([]string, error)
	ListGroupUsers(ctx context.Context, groupID string) ([]string, error)
	ListUserRoles(ctx context.Context, userID string) ([]string, error)

	AddRoleMember(ctx context.Context, tx *sql.Tx, groupID, roleCode string) error
	RemoveRoleMember(ctx context.Context, tx *sql.Tx, groupID, roleCode string) error
	AddUserMember(ctx context.Context, tx *sql.Tx, groupID, userID string) error
	RemoveUserMember(ctx context.Context, tx *sql.Tx, groupID, userID string) error
}

// RoleRepository reads role reference data
type RoleRepository interface {
	FindByCode(ctx context.Context, code string) (*entities.Role, error)
	List(ctx context.Context) ([]entities.Role, error)
}
