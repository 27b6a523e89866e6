package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vergon/rgr-api/internal/auth"
)

func TestRoleForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT r.id, r.name FROM roles r").
		WithArgs("alice", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(2), "manager"))

	repo := NewRoleRepo(db)
	role, err := repo.RoleForUser(context.Background(), "alice", 3)
	if err != nil {
		t.Fatalf("RoleForUser: %v", err)
	}
	if role.ID != 2 || role.Name != "manager" {
		t.Fatalf("unexpected role %+v", role)
	}
}

func TestRoleForUserWithoutRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT r.id, r.name FROM roles r").
		WithArgs("bob", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	repo := NewRoleRepo(db)
	if _, err := repo.RoleForUser(context.Background(), "bob", 3); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected auth.ErrNotFound, got %v", err)
	}
}

func TestRoleHasPermission(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRoleRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM role_permissions rp`).
		WithArgs(int64(2), "companies", "update").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	ok, err := repo.RoleHasPermission(context.Background(), 2, "companies", "update")
	if err != nil {
		t.Fatalf("RoleHasPermission: %v", err)
	}
	if !ok {
		t.Fatal("expected permission to be granted")
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM role_permissions rp`).
		WithArgs(int64(2), "companies", "delete").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	ok, err = repo.RoleHasPermission(context.Background(), 2, "companies", "delete")
	if err != nil {
		t.Fatalf("RoleHasPermission: %v", err)
	}
	if ok {
		t.Fatal("expected permission to be denied")
	}
}
