package loans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"minventory/internal/common"
	"minventory/internal/dbx"
	"minventory/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `id, item_id, borrower, note, quantity, lent_at, returned_at, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, loan *models.Loan) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO loans (id, item_id, borrower, note, quantity, lent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		loan.ID, loan.ItemID, loan.Borrower, loan.Note, loan.Quantity, loan.LentAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, loan *models.Loan) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loans SET borrower = $2, note = $3, quantity = $4, lent_at = $5,
		        returned_at = $6, updated_at = now()
		 WHERE id = $1`,
		loan.ID, loan.Borrower, loan.Note, loan.Quantity, loan.LentAt, loan.ReturnedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	loan := &models.Loan{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM loans WHERE id = $1`, id).Scan(
		&loan.ID, &loan.ItemID, &loan.Borrower, &loan.Note, &loan.Quantity,
		&loan.LentAt, &loan.ReturnedAt, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return loan, nil
}

func (r *PostgresRepository) ListByItem(ctx context.Context, itemID string) ([]models.Loan, error) {
	return r.list(ctx,
		`SELECT `+columns+` FROM loans WHERE item_id = $1 ORDER BY lent_at DESC`, itemID)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Loan, error) {
	return r.list(ctx,
		`SELECT l.id, l.item_id, l.borrower, l.note, l.quantity, l.lent_at, l.returned_at, l.created_at, l.updated_at
		 FROM loans l
		 JOIN items i ON i.id = l.item_id
		 WHERE i.user_id = $1
		 ORDER BY l.lent_at DESC`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]models.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Loan
	for rows.Next() {
		var loan models.Loan
		if err := rows.Scan(
			&loan.ID, &loan.ItemID, &loan.Borrower, &loan.Note, &loan.Quantity,
			&loan.LentAt, &loan.ReturnedAt, &loan.CreatedAt, &loan.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, loan)
	}
	return out, rows.Err()
}
