// Package loans stores lend/return records per item. Ownership checks go
// through the owning item; loans carry no user column of their own.
package loans

import (
	"context"

	"minventory/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Loan, error)
	ListByItem(ctx context.Context, itemID string) ([]models.Loan, error)
	ListByUser(ctx context.Context, userID string) ([]models.Loan, error)
}
