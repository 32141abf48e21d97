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

// UserRepository implements ports.UserRepository over the relational store.
// One Save call is one transaction: the row write, the event append, the
// pending-deletion side record and any post-save callback commit together or
// not at all.
type UserRepository struct {
	db     *sql.DB
	events *EventStore
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, events *EventStore, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, events: events, logger: logger}
}

var _ ports.UserRepository = (*UserRepository)(nil)

// Save persists the user, creating when version 0 and no row exists and
// otherwise issuing a conditional update checked against the stored version.
// On success the in-memory version is advanced (updates only) and the
// pending-events buffer cleared.
func (r *UserRepository) Save(ctx context.Context, user *aggregates.User, postSave ports.PostSaveCallback) error {
	isCreate := user.Version() == 0
	if isCreate {
		exists, err := r.rowExists(ctx, user.ID())
		if err != nil {
			return err
		}
		isCreate = !exists
	}

	err := runInTx(ctx, r.db, func(tx *sql.Tx) error {
		if isCreate {
			if err := r.insert(ctx, tx, user); err != nil {
				return err
			}
		} else {
			if err := r.update(ctx, tx, user); err != nil {
				return err
			}
		}

		if err := r.events.AppendTx(ctx, tx, user.Events()); err != nil {
			return err
		}

		if user.IsDeleted() {
			if err := upsertPendingDeletion(ctx, tx, user.ID(), aggregates.UserAggregateName, user.LastModifiedBy()); err != nil {
				return err
			}
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
		user.AdvanceVersion()
	}
	user.ClearEvents()

	r.logger.Debug("User saved",
		zap.String("user_id", user.ID()),
		zap.Int("version", user.Version()),
		zap.Bool("created", isCreate),
	)
	return nil
}

func (r *UserRepository) insert(ctx context.Context, tx *sql.Tx, user *aggregates.User) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email, username, display_name, sign_in_method, status, external_id,
		                    version, created_at, created_by, last_modified_at, last_modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.ID(),
		user.Email().String(),
		nullableString(user.Username().String()),
		user.DisplayName(),
		string(user.SignInMethod()),
		string(user.Status()),
		user.ExternalID(),
		user.Version(),
		user.CreatedAt(),
		nullableString(user.CreatedBy()),
		nullableTime(user.LastModifiedAt()),
		nullableString(user.LastModifiedBy()),
	)
	if IsUniqueViolation(err) {
		// A concurrent registration won the natural-key race; surface it as a
		// conflict with the storage error intact.
		return errors.NewConflictError("user violates a uniqueness constraint").
			WithCode(string(errors.ConflictDuplicate)).WithCause(err)
	}
	return err
}

func (r *UserRepository) update(ctx context.Context, tx *sql.Tx, user *aggregates.User) error {
	expected := user.Version()
	res, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET email = $1, username = $2, display_name = $3, sign_in_method = $4, status = $5,
		     external_id = $6, version = $7, last_modified_at = $8, last_modified_by = $9
		 WHERE id = $10 AND version = $11`,
		user.Email().String(),
		nullableString(user.Username().String()),
		user.DisplayName(),
		string(user.SignInMethod()),
		string(user.Status()),
		user.ExternalID(),
		expected+1,
		nullableTime(user.LastModifiedAt()),
		nullableString(user.LastModifiedBy()),
		user.ID(),
		expected,
	)
	if IsUniqueViolation(err) {
		return errors.NewConflictError("user violates a uniqueness constraint").
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
		return r.classifyConflict(ctx, tx, user.ID(), expected)
	}
	return nil
}

// classifyConflict converts a zero-rows-affected update into a specific
// conflict: deleted (row gone) or stale (someone else updated first).
func (r *UserRepository) classifyConflict(ctx context.Context, tx *sql.Tx, id string, expected int) error {
	var actual int
	err := tx.QueryRowContext(ctx, `SELECT version FROM users WHERE id = $1`, id).Scan(&actual)
	if err == sql.ErrNoRows {
		return errors.NewVersionConflictError("user", errors.ConflictDeleted, expected, -1)
	}
	if err != nil {
		return err
	}
	return errors.NewVersionConflictError("user", errors.ConflictStaleVersion, expected, actual)
}

func (r *UserRepository) rowExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

const userColumns = `id, email, username, display_name, sign_in_method, status, external_id,
	version, created_at, created_by, last_modified_at, last_modified_by`

// FindByID returns the user or (nil, nil) when no row matches
func (r *UserRepository) FindByID(ctx context.Context, id string) (*aggregates.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail returns the user holding the email, or (nil, nil)
func (r *UserRepository) FindByEmail(ctx context.Context, email valueobjects.Email) (*aggregates.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email.String())
}

// FindByUsername returns the user holding the username, or (nil, nil)
func (r *UserRepository) FindByUsername(ctx context.Context, username valueobjects.Username) (*aggregates.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username.String())
}

// FindByExternalID returns the user referencing the external identity, or
// (nil, nil)
func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*aggregates.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
}

// ExistsByEmail reports whether any user other than excludeID holds the email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email valueobjects.Email, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND ($2 = '' OR id <> $3))`,
		email.String(), excludeID, excludeID,
	).Scan(&exists)
	return exists, err
}

// ExistsByUsername reports whether any user other than excludeID holds the
// username
func (r *UserRepository) ExistsByUsername(ctx context.Context, username valueobjects.Username, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND ($2 = '' OR id <> $3))`,
		username.String(), excludeID, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*aggregates.User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	var (
		id, email, displayName, signInMethod, status, externalID string
		username, createdBy, lastModifiedBy                      sql.NullString
		version                                                  int
		createdAt                                                time.Time
		lastModifiedAt                                           sql.NullTime
	)
	err := row.Scan(&id, &email, &username, &displayName, &signInMethod, &status, &externalID,
		&version, &createdAt, &createdBy, &lastModifiedAt, &lastModifiedBy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return toUserDomain(id, email, username.String, displayName, signInMethod, status, externalID,
		version, createdAt, createdBy.String, lastModifiedAt.Time, lastModifiedBy.String)
}

// toUserDomain reconstructs the aggregate, re-validating stored value objects
// so that rows predating a tightened invariant fail loudly instead of leaking
// through.
func toUserDomain(
	id, rawEmail, rawUsername, displayName, rawMethod, rawStatus, externalID string,
	version int,
	createdAt time.Time,
	createdBy string,
	lastModifiedAt time.Time,
	lastModifiedBy string,
) (*aggregates.User, error) {
	email, err := valueobjects.NewEmail(rawEmail)
	if err != nil {
		return nil, errors.NewValidationError("stored email no longer satisfies domain invariants").
			WithCode("STORED_ROW_INVALID").WithDetail("user_id", id).WithCause(err)
	}
	var username valueobjects.Username
	if rawUsername != "" {
		if username, err = valueobjects.NewUsername(rawUsername); err != nil {
			return nil, errors.NewValidationError("stored username no longer satisfies domain invariants").
				WithCode("STORED_ROW_INVALID").WithDetail("user_id", id).WithCause(err)
		}
	}
	method := aggregates.SignInMethod(rawMethod)
	if !aggregates.ValidSignInMethod(method) {
		return nil, errors.NewValidationError("stored sign-in method is unknown").
			WithCode("STORED_ROW_INVALID").WithDetail("user_id", id).WithDetail("sign_in_method", rawMethod)
	}
	status := aggregates.UserStatus(rawStatus)
	if !aggregates.ValidUserStatus(status) {
		return nil, errors.NewValidationError("stored status is unknown").
			WithCode("STORED_ROW_INVALID").WithDetail("user_id", id).WithDetail("status", rawStatus)
	}

	return aggregates.RehydrateUser(id, version, email, username, displayName, method, status,
		externalID, createdAt, createdBy, lastModifiedAt, lastModifiedBy), nil
}

// upsertPendingDeletion records the aggregate for the out-of-band purge
// process, idempotently, in the caller's transaction
func upsertPendingDeletion(ctx context.Context, tx *sql.Tx, aggregateID, aggregateName, requestedBy string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO pending_deletions (aggregate_id, aggregate_name, requested_at, requested_by)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (aggregate_id) DO NOTHING`,
		aggregateID, aggregateName, time.Now().UTC(), nullableString(requestedBy),
	)
	return err
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
