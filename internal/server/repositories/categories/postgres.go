package categories

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

const columns = `id, user_id, name, description, COALESCE(parent_id::text, ''), private,
	intentional_count, color, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, category *models.Category) error {

	query :=
		`INSERT INTO categories (id, user_id, name, description, parent_id, private, intentional_count, color)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Description,
		category.ParentID, category.Private, category.IntentionalCount, category.Color)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, category *models.Category) error {

	query :=
		`UPDATE categories
		 SET name = $3, description = $4, parent_id = NULLIF($5, '')::uuid, private = $6,
		     intentional_count = $7, color = $8, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Description,
		category.ParentID, category.Private, category.IntentionalCount, category.Color)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.Category, error) {
	query := `SELECT ` + columns + ` FROM categories WHERE id = $1 AND user_id = $2`

	category := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&category.ID, &category.UserID, &category.Name, &category.Description,
		&category.ParentID, &category.Private, &category.IntentionalCount,
		&category.Color, &category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return category, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	query := `SELECT ` + columns + ` FROM categories WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(
			&category.ID, &category.UserID, &category.Name, &category.Description,
			&category.ParentID, &category.Private, &category.IntentionalCount,
			&category.Color, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
