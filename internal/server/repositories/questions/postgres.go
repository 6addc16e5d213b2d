package questions

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

func (r *PostgresRepository) Create(ctx context.Context, question *models.Question) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO questions (id, user_id, question, answer) VALUES ($1, $2, $3, $4)`,
		question.ID, question.UserID, question.Question, question.Answer)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, question *models.Question) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE questions SET question = $3, answer = $4, updated_at = now()
		 WHERE id = $1 AND user_id = $2`,
		question.ID, question.UserID, question.Question, question.Answer)
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
		`DELETE FROM questions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.Question, error) {
	question := &models.Question{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, question, answer, created_at, updated_at
		 FROM questions WHERE id = $1 AND user_id = $2`, id, userID).Scan(
		&question.ID, &question.UserID, &question.Question, &question.Answer,
		&question.CreatedAt, &question.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return question, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Question, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, question, answer, created_at, updated_at
		 FROM questions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var question models.Question
		if err := rows.Scan(
			&question.ID, &question.UserID, &question.Question, &question.Answer,
			&question.CreatedAt, &question.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, question)
	}
	return out, rows.Err()
}
