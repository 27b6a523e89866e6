package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/model"
	"github.com/vergon/rgr-api/internal/utils"
)

const userColumns = "login, company_id, password_hash, role_id, created_at, updated_at"

// UserRepo persists application users. It also satisfies
// auth.CredentialStore so the authentication service can look identities
// up without depending on this package.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Credential fetches the credential slice of a user by login. When the
// same login exists under several companies the oldest row wins, matching
// the login flow which takes no tenant hint.
func (r *UserRepo) Credential(ctx context.Context, login string) (auth.Credential, error) {
	var c auth.Credential
	err := r.DB.QueryRowContext(ctx,
		"SELECT login, company_id, password_hash FROM users WHERE login=? ORDER BY created_at ASC LIMIT 1",
		login).Scan(&c.Login, &c.TenantID, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Credential{}, auth.ErrNotFound
	}
	return c, err
}

// CredentialInTenant fetches the credential slice of a user within a
// specific company.
func (r *UserRepo) CredentialInTenant(ctx context.Context, login string, tenantID int64) (auth.Credential, error) {
	var c auth.Credential
	err := r.DB.QueryRowContext(ctx,
		"SELECT login, company_id, password_hash FROM users WHERE login=? AND company_id=? LIMIT 1",
		login, tenantID).Scan(&c.Login, &c.TenantID, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Credential{}, auth.ErrNotFound
	}
	return c, err
}

// Create inserts a user, hashing the plain password with bcrypt.
func (r *UserRepo) Create(ctx context.Context, login, password string, companyID, roleID int64, cost int) error {
	login = strings.TrimSpace(login)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (login, company_id, password_hash, role_id) VALUES (?,?,?,?)",
		login, companyID, hash, roleID)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// Get fetches a user by login within a company.
func (r *UserRepo) Get(ctx context.Context, login string, companyID int64) (model.User, error) {
	var u model.User
	var roleID sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE login=? AND company_id=? LIMIT 1",
		login, companyID).Scan(&u.Login, &u.CompanyID, &u.PasswordHash, &roleID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	u.RoleID = roleID.Int64
	return u, err
}

// ListByCompany returns one page of a company's users plus the total row
// count for pagination.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID int64, page, limit int) ([]model.User, int64, error) {
	offset := (page - 1) * limit
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE company_id=? ORDER BY login ASC LIMIT ? OFFSET ?",
		companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var roleID sql.NullInt64
		if err := rows.Scan(&u.Login, &u.CompanyID, &u.PasswordHash, &roleID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		u.RoleID = roleID.Int64
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE company_id=?", companyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UserUpdate lists the optional fields of a user update. Nil fields are
// left untouched.
type UserUpdate struct {
	Login    *string
	Password *string
	RoleID   *int64
}

// Update applies a partial update to a user. The password, when present,
// is bcrypt-hashed before it is stored.
func (r *UserRepo) Update(ctx context.Context, login string, companyID int64, upd UserUpdate, cost int) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	if upd.Login != nil {
		sets = append(sets, "login=?")
		args = append(args, strings.TrimSpace(*upd.Login))
	}
	if upd.Password != nil {
		hash, err := utils.HashPassword(*upd.Password, cost)
		if err != nil {
			return err
		}
		sets = append(sets, "password_hash=?")
		args = append(args, hash)
	}
	if upd.RoleID != nil {
		sets = append(sets, "role_id=?")
		args = append(args, *upd.RoleID)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, login, companyID)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE login=? AND company_id=?", args...)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. Tokens already issued to the user die on the
// next verification because the identity lookup fails.
func (r *UserRepo) Delete(ctx context.Context, login string, companyID int64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM users WHERE login=? AND company_id=?", login, companyID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
