package categories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"minventory/internal/common"
	"minventory/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+categories`).
		WithArgs("c-1", "u-1", []byte("sealed-name"), []byte(nil), "", true, 0, "#fff").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Category{
		ID: "c-1", UserID: "u-1", Name: []byte("sealed-name"), Private: true, Color: "#fff",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+categories`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Category{ID: "missing", UserID: "u-1"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "name", "description", "parent_id", "private",
		"intentional_count", "color", "created_at", "updated_at",
	}).AddRow("c-1", "u-1", []byte("sealed"), []byte("sealed-desc"), "c-0", true, 3, "", now, now)

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+categories\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("c-1", "u-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "c-1", "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ParentID != "c-0" || !got.Private || got.IntentionalCount != 3 {
		t.Fatalf("unexpected category: %+v", got)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "name", "description", "parent_id", "private",
		"intentional_count", "color", "created_at", "updated_at",
	}).
		AddRow("c-1", "u-1", []byte("a"), []byte(nil), "", false, 0, "", now, now).
		AddRow("c-2", "u-1", []byte("b"), []byte(nil), "c-1", true, 0, "", now, now)

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+categories\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 2 || got[1].ParentID != "c-1" {
		t.Fatalf("unexpected categories: %+v", got)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+categories`).
		WithArgs("missing", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing", "u-1"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}
