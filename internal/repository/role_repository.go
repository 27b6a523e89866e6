package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/model"
)

// RoleRepo resolves roles and role permissions. Implements
// auth.RoleStore for the authorization gate.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// RoleForUser returns the single role assigned to a user within a
// company, or auth.ErrNotFound when none is assigned.
func (r *RoleRepo) RoleForUser(ctx context.Context, login string, tenantID int64) (auth.Role, error) {
	var role auth.Role
	err := r.DB.QueryRowContext(ctx,
		`SELECT r.id, r.name FROM roles r
		 INNER JOIN users u ON r.id = u.role_id
		 WHERE u.login=? AND u.company_id=?`,
		login, tenantID).Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Role{}, auth.ErrNotFound
	}
	return role, err
}

// RoleHasPermission reports whether an association row links the role to
// a permission matching both resource and action exactly.
func (r *RoleRepo) RoleHasPermission(ctx context.Context, roleID int64, resource, action string) (bool, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM role_permissions rp
		 INNER JOIN permissions p ON rp.permission_id = p.id
		 WHERE rp.role_id=? AND p.resource=? AND p.action=?`,
		roleID, resource, action).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByName fetches a role by its unique name.
func (r *RoleRepo) FindByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM roles WHERE name=? LIMIT 1",
		name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	return role, err
}

// Permissions lists the permissions granted to a role.
func (r *RoleRepo) Permissions(ctx context.Context, roleID int64) ([]model.Permission, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.resource, p.action, p.description, p.created_at FROM permissions p
		 INNER JOIN role_permissions rp ON p.id = rp.permission_id
		 WHERE rp.role_id=?`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []model.Permission
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
