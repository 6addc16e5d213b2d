// Package items stores inventory items, their category links and sealed
// payload columns.
package items

import (
	"context"

	"minventory/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id, userID string) error
	GetByID(ctx context.Context, id, userID string) (*models.Item, error)

	// ListByUser returns the user's items; when categoryIDs is non-empty
	// only items linked to one of those categories are returned.
	ListByUser(ctx context.Context, userID string, categoryIDs []string) ([]models.Item, error)

	// SetCategories replaces the item's category links.
	SetCategories(ctx context.Context, itemID string, categoryIDs []string) error

	// GetCategories returns the category ids linked to one item.
	GetCategories(ctx context.Context, itemID string) ([]string, error)

	// CategoryLinksByUser returns every item→categories association for the
	// user in one query.
	CategoryLinksByUser(ctx context.Context, userID string) (map[string][]string, error)

	// DirectCounts returns, per category, the number of items linked to it.
	DirectCounts(ctx context.Context, userID string) (map[string]int, error)

	// AddQuantity applies a delta to the item's cached quantity.
	AddQuantity(ctx context.Context, id, userID string, delta float64) error
}
