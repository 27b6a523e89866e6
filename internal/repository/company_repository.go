package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vergon/rgr-api/internal/model"
)

const companyColumns = "id, name, trade_name, cnpj, email, phone, address, is_active, created_at, updated_at"

// CompanyRepo persists companies (tenants).
type CompanyRepo struct{ DB *sql.DB }

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{DB: db} }

// CompanyFilter narrows and orders List results. SortBy is checked
// against a whitelist; anything else falls back to id.
type CompanyFilter struct {
	ActiveOnly bool
	Search     string
	SortBy     string
	SortOrder  string
}

var companySortFields = map[string]bool{
	"id": true, "name": true, "trade_name": true, "created_at": true, "updated_at": true,
}

// Create inserts a company and returns its id. A duplicate CNPJ maps to
// ErrDuplicate.
func (r *CompanyRepo) Create(ctx context.Context, c model.Company) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO companies (name, trade_name, cnpj, email, phone, address, is_active) VALUES (?,?,?,?,?,?,?)",
		c.Name, c.TradeName, c.CNPJ, c.Email, c.Phone, c.Address, c.IsActive)
	if isDuplicateKey(err) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FindByID fetches a company by id.
func (r *CompanyRepo) FindByID(ctx context.Context, id int64) (model.Company, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE id=? LIMIT 1", id))
}

// FindByCNPJ fetches a company by its CNPJ document number.
func (r *CompanyRepo) FindByCNPJ(ctx context.Context, cnpj string) (model.Company, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE cnpj=? LIMIT 1", cnpj))
}

// List returns one page of companies plus the total matching count.
func (r *CompanyRepo) List(ctx context.Context, page, limit int, f CompanyFilter) ([]model.Company, int64, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 5)
	if f.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR trade_name LIKE ? OR cnpj LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	orderBy := f.SortBy
	if !companySortFields[orderBy] {
		orderBy = "id"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "ASC") {
		order = "ASC"
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM companies"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+companyColumns+" FROM companies"+clause+" ORDER BY "+orderBy+" "+order+" LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

// CompanyUpdate lists the optional fields of a company update. Nil
// fields are left untouched.
type CompanyUpdate struct {
	Name      *string
	TradeName *string
	CNPJ      *string
	Email     *string
	Phone     *string
	Address   *string
	IsActive  *bool
}

// Update applies a partial update to a company.
func (r *CompanyRepo) Update(ctx context.Context, id int64, upd CompanyUpdate) error {
	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	add := func(col string, v interface{}) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.TradeName != nil {
		add("trade_name", *upd.TradeName)
	}
	if upd.CNPJ != nil {
		add("cnpj", *upd.CNPJ)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Phone != nil {
		add("phone", *upd.Phone)
	}
	if upd.Address != nil {
		add("address", *upd.Address)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE companies SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
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

// Delete removes a company.
func (r *CompanyRepo) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "DELETE FROM companies WHERE id=?", id)
}

// Activate flags a company as active.
func (r *CompanyRepo) Activate(ctx context.Context, id int64) error {
	return r.exec(ctx, "UPDATE companies SET is_active = TRUE WHERE id=?", id)
}

// Deactivate flags a company as inactive.
func (r *CompanyRepo) Deactivate(ctx context.Context, id int64) error {
	return r.exec(ctx, "UPDATE companies SET is_active = FALSE WHERE id=?", id)
}

func (r *CompanyRepo) exec(ctx context.Context, query string, id int64) error {
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *CompanyRepo) scanOne(row *sql.Row) (model.Company, error) {
	c, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, ErrNotFound
	}
	return c, err
}

func (r *CompanyRepo) scanRow(s rowScanner) (model.Company, error) {
	var c model.Company
	var tradeName, cnpj, email, phone, address sql.NullString
	err := s.Scan(&c.ID, &c.Name, &tradeName, &cnpj, &email, &phone, &address,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	c.TradeName = tradeName.String
	c.CNPJ = cnpj.String
	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	return c, err
}
