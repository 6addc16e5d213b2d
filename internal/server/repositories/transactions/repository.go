// Package transactions journals quantity deltas per item.
package transactions

import (
	"context"

	"minventory/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, tx *models.QuantityTransaction) error
	ListByItem(ctx context.Context, itemID string) ([]models.QuantityTransaction, error)
}
