package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/valueobjects"
)

// openTestDB runs the shared schema against an in-memory SQLite database.
// The SQL in this package sticks to the dialect subset both engines accept,
// so the repositories under test are the production ones.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func newTestUserRepo(t *testing.T) (*UserRepository, *EventStore, *sql.DB) {
	t.Helper()
	db := openTestDB(t)
	store := NewEventStore(db)
	return NewUserRepository(db, store, zap.NewNop()), store, db
}

func newTestGroupRepo(t *testing.T) (*UserGroupRepository, *EventStore, *sql.DB) {
	t.Helper()
	db := openTestDB(t)
	store := NewEventStore(db)
	return NewUserGroupRepository(db, store, zap.NewNop()), store, db
}

func testUser(t *testing.T, emailAddr, handle string) *aggregates.User {
	t.Helper()
	email, err := valueobjects.NewEmail(emailAddr)
	require.NoError(t, err)
	var username valueobjects.Username
	if handle != "" {
		username, err = valueobjects.NewUsername(handle)
		require.NoError(t, err)
	}
	user, err := aggregates.NewUser(email, username, "Test User", aggregates.SignInPassword, "ext-"+emailAddr, "")
	require.NoError(t, err)
	return user
}

func testGroup(t *testing.T, name string) *aggregates.UserGroup {
	t.Helper()
	groupName, err := valueobjects.NewGroupName(name)
	require.NoError(t, err)
	group, err := aggregates.NewUserGroup(groupName, "", "admin-1")
	require.NoError(t, err)
	return group
}

func countRows(t *testing.T, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}
