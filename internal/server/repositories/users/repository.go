// Package users declares the storage contract for user accounts and
// provides its PostgreSQL implementation.
package users

import (
	"context"

	"clubtourney-server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
