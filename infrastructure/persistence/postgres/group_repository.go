package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"idadmin/application/ports"
	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/valueobjects"
	"idadmin/pkg/errors"
)

// UserGroupRepository implements ports.UserGroupRepository. It owns the
// group row plus the role/user membership join tables; membership writes run
// through the Save transaction via post-save callbacks.
type UserGroupRepository struct {
	db     *sql.DB
	events *EventStore
	logger *zap.Logger
}

// NewUserGroupRepository creates a new group repository
func NewUserGroupRepository(db *sql.DB, events *EventStore, logger *zap.Logger) *UserGroupRepository {
	return &UserGroupRepository{db: db, events: events, logger: logger}
}

var _ ports.UserGroupRepository = (*UserGroupRepository)(nil)

// Save persists the group with the same create/update and conditional-version
// semantics as the user repository
func (r *UserGroupRepository) Save(ctx context.Context, group *aggregates.UserGroup, postSave ports.PostSaveCallback) error {
	isCreate := group.Version() == 0
	if isCreate {
		exists, err := r.rowExists(ctx, group.ID())
		if err != nil {
			return err
		}
		isCreate = !exists
	}

	err := runInTx(ctx, r.db, func(tx *sql.Tx) error {
		if isCreate {
			if err := r.insert(ctx, tx, group); err != nil {
				return err
			}
		} else {
			if err := r.update(ctx, tx, group); err != nil {
				return err
			}
		}

		if err := r.events.AppendTx(ctx, tx, group.Events()); err != nil {
			return err
		}

		if postSave != nil {
			if err := postSave(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !isCreate {
		group.AdvanceVersion()
	}
	group.ClearEvents()

	r.logger.Debug("User group saved",
		zap.String("group_id", group.ID()),
		zap.Int("version", group.Version()),
		zap.Bool("created", isCreate),
	)
	return nil
}

// Delete removes the group row, its memberships and persists any pending
// events (typically the single deleted event) in one transaction
func (r *UserGroupRepository) Delete(ctx context.Context, group *aggregates.UserGroup) error {
	err := runInTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM user_groups WHERE id = $1`, group.ID())
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return errors.NewVersionConflictError("user group", errors.ConflictDeleted, group.Version(), -1)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_group_roles WHERE group_id = $1`, group.ID()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_group_users WHERE group_id = $1`, group.ID()); err != nil {
			return err
		}

		return r.events.AppendTx(ctx, tx, group.Events())
	})
	if err != nil {
		return err
	}

	group.ClearEvents()

	r.logger.Debug("User group deleted", zap.String("group_id", group.ID()))
	return nil
}

func (r *UserGroupRepository) insert(ctx context.Context, tx *sql.Tx, group *aggregates.UserGroup) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_groups (id, name, description, version, created_at, created_by, last_modified_at, last_modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		group.ID(),
		group.Name().String(),
		group.Description(),
		group.Version(),
		group.CreatedAt(),
		nullableString(group.CreatedBy()),
		nullableTime(group.LastModifiedAt()),
		nullableString(group.LastModifiedBy()),
	)
	if IsUniqueViolation(err) {
		return errors.NewConflictError("group violates a uniqueness constraint").
			WithCode(string(errors.ConflictDuplicate)).WithCause(err)
	}
	return err
}

func (r *UserGroupRepository) update(ctx context.Context, tx *sql.Tx, group *aggregates.UserGroup) error {
	expected := group.Version()
	res, err := tx.ExecContext(ctx,
		`UPDATE user_groups
		 SET name = $1, description = $2, version = $3, last_modified_at = $4, last_modified_by = $5
		 WHERE id = $6 AND version = $7`,
		group.Name().String(),
		group.Description(),
		expected+1,
		nullableTime(group.LastModifiedAt()),
		nullableString(group.LastModifiedBy()),
		group.ID(),
		expected,
	)
	if IsUniqueViolation(err) {
		return errors.NewConflictError("group violates a uniqueness constraint").
			WithCode(string(errors.ConflictDuplicate)).WithCause(err)
	}
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var actual int
		err := tx.QueryRowContext(ctx, `SELECT version FROM user_groups WHERE id = $1`, group.ID()).Scan(&actual)
		if err == sql.ErrNoRows {
			return errors.NewVersionConflictError("user group", errors.ConflictDeleted, expected, -1)
		}
		if err != nil {
			return err
		}
		return errors.NewVersionConflictError("user group", errors.ConflictStaleVersion, expected, actual)
	}
	return nil
}

func (r *UserGroupRepository) rowExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM user_groups WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

const groupColumns = `id, name, description, version, created_at, created_by, last_modified_at, last_modified_by`

// FindByID returns the group or (nil, nil) when no row matches
func (r *UserGroupRepository) FindByID(ctx context.Context, id string) (*aggregates.UserGroup, error) {
	return r.findOne(ctx, `SELECT `+groupColumns+` FROM user_groups WHERE id = $1`, id)
}

// FindByName returns the group holding the name, or (nil, nil)
func (r *UserGroupRepository) FindByName(ctx context.Context, name valueobjects.GroupName) (*aggregates.UserGroup, error) {
	return r.findOne(ctx, `SELECT `+groupColumns+` FROM user_groups WHERE name = $1`, name.String())
}

// ExistsByName reports whether any group other than excludeID holds the name
func (r *UserGroupRepository) ExistsByName(ctx context.Context, name valueobjects.GroupName, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_groups WHERE name = $1 AND ($2 = '' OR id <> $3))`,
		name.String(), excludeID, excludeID,
	).Scan(&exists)
	return exists, err
}

// RoleInGroup reports whether the role is a member of the group
func (r *UserGroupRepository) RoleInGroup(ctx context.Context, groupID, roleCode string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_group_roles WHERE group_id = $1 AND role_code = $2)`,
		groupID, roleCode,
	).Scan(&exists)
	return exists, err
}

// UserInGroup reports whether the user is a member of the group
func (r *UserGroupRepository) UserInGroup(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_group_users WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&exists)
	return exists, err
}

// ListGroupRoles returns the role codes granted to the group
func (r *UserGroupRepository) ListGroupRoles(ctx context.Context, groupID string) ([]string, error) {
	return r.listStrings(ctx, `SELECT role_code FROM user_group_roles WHERE group_id = $1 ORDER BY role_code`, groupID)
}

// ListGroupUsers returns the user ids placed in the group
func (r *UserGroupRepository) ListGroupUsers(ctx context.Context, groupID string) ([]string, error) {
	return r.listStrings(ctx, `SELECT user_id FROM user_group_users WHERE group_id = $1 ORDER BY user_id`, groupID)
}

// ListUserRoles returns the distinct role codes a user holds through group
// membership. This is the RBAC read used when minting a token.
func (r *UserGroupRepository) ListUserRoles(ctx context.Context, userID string) ([]string, error) {
	return r.listStrings(ctx,
		`SELECT DISTINCT gr.role_code
		 FROM user_group_roles gr
		 JOIN user_group_users gu ON gu.group_id = gr.group_id
		 WHERE gu.user_id = $1
		 ORDER BY gr.role_code`,
		userID)
}

// AddRoleMember inserts the role membership row in the caller's transaction
func (r *UserGroupRepository) AddRoleMember(ctx context.Context, tx *sql.Tx, groupID, roleCode string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_group_roles (group_id, role_code) VALUES ($1, $2)`,
		groupID, roleCode,
	)
	if IsUniqueViolation(err) {
		return errors.NewValidationError("role is already in group").
			WithCode("ROLE_ALREADY_IN_GROUP").WithCause(err)
	}
	return err
}

// RemoveRoleMember deletes the role membership row in the caller's transaction
func (r *UserGroupRepository) RemoveRoleMember(ctx context.Context, tx *sql.Tx, groupID, roleCode string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM user_group_roles WHERE group_id = $1 AND role_code = $2`,
		groupID, roleCode,
	)
	return err
}

// AddUserMember inserts the user membership row in the caller's transaction
func (r *UserGroupRepository) AddUserMember(ctx context.Context, tx *sql.Tx, groupID, userID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_group_users (group_id, user_id) VALUES ($1, $2)`,
		groupID, userID,
	)
	if IsUniqueViolation(err) {
		return errors.NewValidationError("user is already in group").
			WithCode("USER_ALREADY_IN_GROUP").WithCause(err)
	}
	return err
}

// RemoveUserMember deletes the user membership row in the caller's transaction
func (r *UserGroupRepository) RemoveUserMember(ctx context.Context, tx *sql.Tx, groupID, userID string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM user_group_users WHERE group_id = $1 AND user_id = $2`,
		groupID, userID,
	)
	return err
}

func (r *UserGroupRepository) listStrings(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *UserGroupRepository) findOne(ctx context.Context, query string, arg interface{}) (*aggregates.UserGroup, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	var (
		id, rawName, description        string
		createdBy, lastModifiedBy       sql.NullString
		version                         int
		createdAt                       time.Time
		lastModifiedAt                  sql.NullTime
	)
	err := row.Scan(&id, &rawName, &description, &version, &createdAt, &createdBy, &lastModifiedAt, &lastModifiedBy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	name, err := valueobjects.NewGroupName(rawName)
	if err != nil {
		return nil, errors.NewValidationError("stored group name no longer satisfies domain invariants").
			WithCode("STORED_ROW_INVALID").WithDetail("group_id", id).WithCause(err)
	}

	return aggregates.RehydrateUserGroup(id, version, name, description,
		createdAt, createdBy.String, lastModifiedAt.Time, lastModifiedBy.String), nil
}
