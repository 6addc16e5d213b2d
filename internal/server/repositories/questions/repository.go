// Package questions stores the free-text Q&A records; both sides are sealed.
package questions

import (
	"context"

	"minventory/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id, userID string) error
	GetByID(ctx context.Context, id, userID string) (*models.Question, error)
	ListByUser(ctx context.Context, userID string) ([]models.Question, error)
}
