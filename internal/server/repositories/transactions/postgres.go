package transactions

import (
	"context"
	"fmt"

	"minventory/internal/dbx"
	"minventory/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tx *models.QuantityTransaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quantity_transactions (id, item_id, delta, note, reason)
		 VALUES ($1, $2, $3, $4, $5)`,
		tx.ID, tx.ItemID, tx.Delta, tx.Note, tx.Reason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByItem(ctx context.Context, itemID string) ([]models.QuantityTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_id, delta, note, reason, created_at
		 FROM quantity_transactions WHERE item_id = $1 ORDER BY created_at DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.QuantityTransaction
	for rows.Next() {
		var tx models.QuantityTransaction
		if err := rows.Scan(&tx.ID, &tx.ItemID, &tx.Delta, &tx.Note, &tx.Reason, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
