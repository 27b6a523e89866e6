package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRevokeInsertsHashedToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	mock.ExpectExec("INSERT INTO token_blacklist").
		WithArgs(hashToken("raw-token"), "alice", exp.UTC()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewTokenBlacklistRepo(db)
	if err := repo.Revoke(context.Background(), "raw-token", "alice", exp); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevokeTreatsDuplicateAsSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO token_blacklist").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	repo := NewTokenBlacklistRepo(db)
	if err := repo.Revoke(context.Background(), "raw-token", "alice", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("duplicate revoke must succeed, got %v", err)
	}
}

func TestIsRevoked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewTokenBlacklistRepo(db)

	mock.ExpectQuery("SELECT id FROM token_blacklist").
		WithArgs(hashToken("revoked-token")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	revoked, err := repo.IsRevoked(context.Background(), "revoked-token")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected token to be revoked")
	}

	mock.ExpectQuery("SELECT id FROM token_blacklist").
		WithArgs(hashToken("unknown-token")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	revoked, err = repo.IsRevoked(context.Background(), "unknown-token")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("unknown token must not be revoked")
	}
}

func TestPruneExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM token_blacklist").
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewTokenBlacklistRepo(db)
	n, err := repo.PruneExpired(context.Background())
	if err != nil {
		t.Fatalf("PruneExpired: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 pruned rows, got %d", n)
	}
}
