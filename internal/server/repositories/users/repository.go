// Package users stores account records: credentials, two-factor state and
// the key-derivation salt. The derived key itself is never persisted.
package users

import (
	"context"

	"minventory/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateTwoFactor persists the two-factor secret and enabled flag.
	UpdateTwoFactor(ctx context.Context, userID, secret string, enabled bool) error
}
