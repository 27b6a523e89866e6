package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vergon/rgr-api/internal/model"
)

const personColumns = `id, company_id, branch_id, kind, name, cpf, cnpj, email, phone, mobile,
	zip_code, street, street_number, complement, district, city, state, birth_date,
	contact_name, notes, status, created_at, updated_at`

// PersonRepo persists persons. Every query carries the company id so a
// tenant can only ever touch its own rows.
type PersonRepo struct{ DB *sql.DB }

func NewPersonRepo(db *sql.DB) *PersonRepo { return &PersonRepo{DB: db} }

// PersonFilter narrows and orders List results.
type PersonFilter struct {
	Search    string
	Kind      string
	Status    int
	SortBy    string
	SortOrder string
}

var personSortFields = map[string]bool{
	"id": true, "name": true, "cpf": true, "cnpj": true, "created_at": true, "updated_at": true,
}

// Create inserts a person and returns its id.
func (r *PersonRepo) Create(ctx context.Context, p model.Person) (int64, error) {
	if p.Status == 0 {
		p.Status = model.PersonActive
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO persons (company_id, branch_id, kind, name, cpf, cnpj, email, phone, mobile,
		 zip_code, street, street_number, complement, district, city, state, birth_date,
		 contact_name, notes, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.CompanyID, p.BranchID, p.Kind, p.Name, nullStr(p.CPF), nullStr(p.CNPJ),
		nullStr(p.Email), nullStr(p.Phone), nullStr(p.Mobile), nullStr(p.ZipCode),
		nullStr(p.Street), nullStr(p.StreetNumber), nullStr(p.Complement), nullStr(p.District),
		nullStr(p.City), nullStr(p.State), p.BirthDate, nullStr(p.ContactName), nullStr(p.Notes), p.Status)
	if isDuplicateKey(err) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FindByID fetches a person by id within a company.
func (r *PersonRepo) FindByID(ctx context.Context, id, companyID int64) (model.Person, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE id=? AND company_id=? LIMIT 1", id, companyID))
}

// FindByCPF fetches a person by CPF within a company.
func (r *PersonRepo) FindByCPF(ctx context.Context, cpf string, companyID int64) (model.Person, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE cpf=? AND company_id=? LIMIT 1", cpf, companyID))
}

// FindByCNPJ fetches a person by CNPJ within a company.
func (r *PersonRepo) FindByCNPJ(ctx context.Context, cnpj string, companyID int64) (model.Person, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE cnpj=? AND company_id=? LIMIT 1", cnpj, companyID))
}

// SearchByName returns persons whose name matches the given prefix or
// fragment, ordered alphabetically.
func (r *PersonRepo) SearchByName(ctx context.Context, name string, companyID int64, limit int) ([]model.Person, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE name LIKE ? AND company_id=? ORDER BY name ASC LIMIT ?",
		"%"+name+"%", companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

// List returns one page of a company's persons plus the total matching
// count.
func (r *PersonRepo) List(ctx context.Context, companyID int64, page, limit int, f PersonFilter) ([]model.Person, int64, error) {
	where := []string{"company_id = ?"}
	args := []interface{}{companyID}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR cpf LIKE ? OR cnpj LIKE ? OR email LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like, like, like)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Status != 0 {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	orderBy := f.SortBy
	if !personSortFields[orderBy] {
		orderBy = "id"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "ASC") {
		order = "ASC"
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM persons"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+personColumns+" FROM persons"+clause+" ORDER BY "+orderBy+" "+order+" LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	persons, err := r.collect(rows)
	return persons, total, err
}

// PersonUpdate lists the optional fields of a person update. Nil fields
// are left untouched.
type PersonUpdate struct {
	Kind         *string
	Name         *string
	CPF          *string
	CNPJ         *string
	Email        *string
	Phone        *string
	Mobile       *string
	ZipCode      *string
	Street       *string
	StreetNumber *string
	Complement   *string
	District     *string
	City         *string
	State        *string
	ContactName  *string
	Notes        *string
	Status       *int
}

// Update applies a partial update to a person within a company.
func (r *PersonRepo) Update(ctx context.Context, id, companyID int64, upd PersonUpdate) error {
	sets := make([]string, 0, 17)
	args := make([]interface{}, 0, 19)
	add := func(col string, v interface{}) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.Kind != nil {
		add("kind", *upd.Kind)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.CPF != nil {
		add("cpf", nullStr(*upd.CPF))
	}
	if upd.CNPJ != nil {
		add("cnpj", nullStr(*upd.CNPJ))
	}
	if upd.Email != nil {
		add("email", nullStr(*upd.Email))
	}
	if upd.Phone != nil {
		add("phone", nullStr(*upd.Phone))
	}
	if upd.Mobile != nil {
		add("mobile", nullStr(*upd.Mobile))
	}
	if upd.ZipCode != nil {
		add("zip_code", nullStr(*upd.ZipCode))
	}
	if upd.Street != nil {
		add("street", nullStr(*upd.Street))
	}
	if upd.StreetNumber != nil {
		add("street_number", nullStr(*upd.StreetNumber))
	}
	if upd.Complement != nil {
		add("complement", nullStr(*upd.Complement))
	}
	if upd.District != nil {
		add("district", nullStr(*upd.District))
	}
	if upd.City != nil {
		add("city", nullStr(*upd.City))
	}
	if upd.State != nil {
		add("state", nullStr(*upd.State))
	}
	if upd.ContactName != nil {
		add("contact_name", nullStr(*upd.ContactName))
	}
	if upd.Notes != nil {
		add("notes", nullStr(*upd.Notes))
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, companyID)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE persons SET "+strings.Join(sets, ", ")+" WHERE id=? AND company_id=?", args...)
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

// Delete removes a person within a company.
func (r *PersonRepo) Delete(ctx context.Context, id, companyID int64) error {
	return r.exec(ctx, "DELETE FROM persons WHERE id=? AND company_id=?", id, companyID)
}

// Activate sets a person's status to active.
func (r *PersonRepo) Activate(ctx context.Context, id, companyID int64) error {
	return r.exec(ctx, "UPDATE persons SET status=1 WHERE id=? AND company_id=?", id, companyID)
}

// Deactivate sets a person's status to inactive.
func (r *PersonRepo) Deactivate(ctx context.Context, id, companyID int64) error {
	return r.exec(ctx, "UPDATE persons SET status=2 WHERE id=? AND company_id=?", id, companyID)
}

func (r *PersonRepo) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PersonRepo) scanOne(row *sql.Row) (model.Person, error) {
	p, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Person{}, ErrNotFound
	}
	return p, err
}

func (r *PersonRepo) scanRow(s rowScanner) (model.Person, error) {
	var p model.Person
	var cpf, cnpj, email, phone, mobile, zip, street, number, compl, district, city, state, contact, notes sql.NullString
	var birth sql.NullTime
	err := s.Scan(&p.ID, &p.CompanyID, &p.BranchID, &p.Kind, &p.Name, &cpf, &cnpj, &email,
		&phone, &mobile, &zip, &street, &number, &compl, &district, &city, &state, &birth,
		&contact, &notes, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	p.CPF = cpf.String
	p.CNPJ = cnpj.String
	p.Email = email.String
	p.Phone = phone.String
	p.Mobile = mobile.String
	p.ZipCode = zip.String
	p.Street = street.String
	p.StreetNumber = number.String
	p.Complement = compl.String
	p.District = district.String
	p.City = city.String
	p.State = state.String
	p.ContactName = contact.String
	p.Notes = notes.String
	if birth.Valid {
		t := birth.Time
		p.BirthDate = &t
	}
	return p, err
}

func (r *PersonRepo) collect(rows *sql.Rows) ([]model.Person, error) {
	var persons []model.Person
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// nullStr maps "" to NULL so empty optional fields stay NULL in MySQL.
func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
