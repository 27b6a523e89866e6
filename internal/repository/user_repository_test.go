package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vergon/rgr-api/internal/auth"
)

func TestCredentialLookup(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT login, company_id, password_hash FROM users WHERE login").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"login", "company_id", "password_hash"}).
			AddRow("alice", int64(3), "$2a$10$hash"))

	repo := NewUserRepo(db)
	cred, err := repo.Credential(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if cred.Login != "alice" || cred.TenantID != 3 || cred.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected credential %+v", cred)
	}
}

func TestCredentialNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT login, company_id, password_hash FROM users WHERE login").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"login", "company_id", "password_hash"}))

	repo := NewUserRepo(db)
	if _, err := repo.Credential(context.Background(), "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected auth.ErrNotFound, got %v", err)
	}
}

func TestCredentialInTenantScopesByCompany(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT login, company_id, password_hash FROM users WHERE login=. AND company_id").
		WithArgs("alice", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"login", "company_id", "password_hash"}))

	repo := NewUserRepo(db)
	if _, err := repo.CredentialInTenant(context.Background(), "alice", 9); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("login existing only under another tenant must be ErrNotFound, got %v", err)
	}
}

func TestCreateUserMapsDuplicateLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'bob-3'"))

	repo := NewUserRepo(db)
	err = repo.Create(context.Background(), "bob", "Secret1", 3, 1, 4)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestDeleteUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM users").
		WithArgs("ghost", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepo(db)
	if err := repo.Delete(context.Background(), "ghost", 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
