package postgres

import (
	"context"
	"database/sql"

	"idadmin/application/ports"
	"idadmin/domain/core/entities"
)

// RoleRepository reads role reference data. Roles are seeded at startup and
// never mutated at runtime.
type RoleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

var _ ports.RoleRepository = (*RoleRepository)(nil)

// FindByCode returns the role or (nil, nil) when no row matches
func (r *RoleRepository) FindByCode(ctx context.Context, code string) (*entities.Role, error) {
	var role entities.Role
	err := r.db.QueryRowContext(ctx,
		`SELECT code, name, description FROM roles WHERE code = $1`, code,
	).Scan(&role.Code, &role.Name, &role.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// List returns all roles ordered by code
func (r *RoleRepository) List(ctx context.Context) ([]entities.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name, description FROM roles ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.Role
	for rows.Next() {
		var role entities.Role
		if err := rows.Scan(&role.Code, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// Seed inserts the given roles if they are not present yet
func (r *RoleRepository) Seed(ctx context.Context, roles []entities.Role) error {
	for _, role := range roles {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO roles (code, name, description) VALUES ($1, $2, $3)
			 ON CONFLICT (code) DO NOTHING`,
			role.Code, role.Name, role.Description,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
