// Package tournaments declares the storage contract for tournament rows and
// provides its PostgreSQL implementation.
package tournaments

import (
	"context"

	"clubtourney-server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Tournament) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	ListByClub(ctx context.Context, clubID string) ([]*models.Tournament, error)
}
