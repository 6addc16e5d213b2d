package items

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"minventory/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func itemRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "image_blob", "thumbnail_blob", "image_key",
		"image_mime", "thumb_mime", "image_width", "image_height",
		"thumb_width", "thumb_height", "quantity", "usage_frequency",
		"attachment", "intention", "joy", "is_isolated", "created_at", "updated_at",
	}).AddRow("i-1", "u-1", []byte("sealed"), []byte(nil), []byte("thumb"), "",
		"", "image/webp", 0, 0, 256, 256, 2.5, "daily",
		"some", "keep", "high", false, now, now)
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+items\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("i-1", "u-1").
		WillReturnRows(itemRows())

	got, err := repo.GetByID(context.Background(), "i-1", "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Quantity != 2.5 || got.UsageFreq != "daily" {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+items`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing", "u-1")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestListByUser_NoFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+items\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnRows(itemRows())

	got, err := repo.ListByUser(context.Background(), "u-1", nil)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
}

func TestSetCategories(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+item_categories`).
		WithArgs("i-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+item_categories`).
		WithArgs("i-1", "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+item_categories`).
		WithArgs("i-1", "c-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetCategories(context.Background(), "i-1", []string{"c-1", "c-2"}); err != nil {
		t.Fatalf("SetCategories error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDirectCounts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"category_id", "count"}).
		AddRow("c-1", 3).
		AddRow("c-2", 1)
	mock.ExpectQuery(`(?s)^SELECT\s+ic\.category_id,\s*count`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.DirectCounts(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("DirectCounts error: %v", err)
	}
	if got["c-1"] != 3 || got["c-2"] != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
}

func TestAddQuantity_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+items\s+SET\s+quantity`).
		WithArgs("missing", "u-1", 1.0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.AddQuantity(context.Background(), "missing", "u-1", 1.0); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}
