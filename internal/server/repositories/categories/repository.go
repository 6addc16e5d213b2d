// Package categories stores the per-user category forest. Name and
// description columns hold sealed ciphertext.
package categories

import (
	"context"

	"minventory/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id, userID string) error
	GetByID(ctx context.Context, id, userID string) (*models.Category, error)

	// ListByUser returns the user's full category snapshot; hierarchy
	// resolution happens in memory on this snapshot.
	ListByUser(ctx context.Context, userID string) ([]models.Category, error)
}
