package items

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

const columns = `id, user_id, name, image_blob, thumbnail_blob, image_key, image_mime, thumb_mime,
	image_width, image_height, thumb_width, thumb_height, quantity,
	usage_frequency, attachment, intention, joy, is_isolated, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) error {

	query :=
		`INSERT INTO items (id, user_id, name, image_blob, thumbnail_blob, image_key, image_mime, thumb_mime,
		                    image_width, image_height, thumb_width, thumb_height, quantity,
		                    usage_frequency, attachment, intention, joy, is_isolated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 `

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.Name, item.ImageBlob, item.ThumbnailBlob, item.ImageKey,
		item.ImageMime, item.ThumbMime, item.ImageWidth, item.ImageHeight,
		item.ThumbWidth, item.ThumbHeight, item.Quantity,
		item.UsageFreq, item.Attachment, item.Intention, item.Joy, item.IsIsolated)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) error {

	query :=
		`UPDATE items
		 SET name = $3, image_blob = $4, thumbnail_blob = $5, image_key = $6, image_mime = $7,
		     thumb_mime = $8, image_width = $9, image_height = $10, thumb_width = $11,
		     thumb_height = $12, quantity = $13, usage_frequency = $14, attachment = $15,
		     intention = $16, joy = $17, is_isolated = $18, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.Name, item.ImageBlob, item.ThumbnailBlob, item.ImageKey,
		item.ImageMime, item.ThumbMime, item.ImageWidth, item.ImageHeight,
		item.ThumbWidth, item.ThumbHeight, item.Quantity,
		item.UsageFreq, item.Attachment, item.Intention, item.Joy, item.IsIsolated)

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
		`DELETE FROM items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.Item, error) {
	query := `SELECT ` + columns + ` FROM items WHERE id = $1 AND user_id = $2`

	item := &models.Item{}
	err := scanItem(r.db.QueryRowContext(ctx, query, id, userID).Scan, item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, categoryIDs []string) ([]models.Item, error) {

	query := `SELECT ` + columns + ` FROM items WHERE user_id = $1 ORDER BY created_at`
	args := []any{userID}

	if len(categoryIDs) > 0 {
		query = `SELECT DISTINCT ` + columns + `
		 FROM items
		 JOIN item_categories ic ON ic.item_id = items.id
		 WHERE user_id = $1 AND ic.category_id = ANY($2::uuid[])
		 ORDER BY created_at`
		args = append(args, categoryIDs)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		var item models.Item
		if err := scanItem(rows.Scan, &item); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) SetCategories(ctx context.Context, itemID string, categoryIDs []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM item_categories WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for _, categoryID := range categoryIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO item_categories (item_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			itemID, categoryID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) GetCategories(ctx context.Context, itemID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id FROM item_categories WHERE item_id = $1`, itemID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CategoryLinksByUser(ctx context.Context, userID string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ic.item_id, ic.category_id
		 FROM item_categories ic
		 JOIN items i ON i.id = ic.item_id
		 WHERE i.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var itemID, categoryID string
		if err := rows.Scan(&itemID, &categoryID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out[itemID] = append(out[itemID], categoryID)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) DirectCounts(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ic.category_id, count(*)
		 FROM item_categories ic
		 JOIN items i ON i.id = ic.item_id
		 WHERE i.user_id = $1
		 GROUP BY ic.category_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var categoryID string
		var n int
		if err := rows.Scan(&categoryID, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out[categoryID] = n
	}
	return out, rows.Err()
}

func (r *PostgresRepository) AddQuantity(ctx context.Context, id, userID string, delta float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET quantity = quantity + $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2`, id, userID, delta)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanItem(scan func(dest ...any) error, item *models.Item) error {
	return scan(
		&item.ID, &item.UserID, &item.Name, &item.ImageBlob, &item.ThumbnailBlob,
		&item.ImageKey, &item.ImageMime, &item.ThumbMime,
		&item.ImageWidth, &item.ImageHeight, &item.ThumbWidth, &item.ThumbHeight,
		&item.Quantity, &item.UsageFreq, &item.Attachment, &item.Intention,
		&item.Joy, &item.IsIsolated, &item.CreatedAt, &item.UpdatedAt)
}
