package tournaments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/dbx"
	"clubtourney-server/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Tournament) (*models.Tournament, error) {
	query := `
		INSERT INTO tournaments (club_id, title, buy_in_cents, starts_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		t.ClubID, t.Title, t.BuyInCents, t.StartsAt, t.Status).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `
		SELECT id, club_id, title, buy_in_cents, starts_at, status, created_at
		FROM tournaments
		WHERE id = $1
	`
	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.ClubID, &t.Title, &t.BuyInCents, &t.StartsAt, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByClub(ctx context.Context, clubID string) ([]*models.Tournament, error) {
	query := `
		SELECT id, club_id, title, buy_in_cents, starts_at, status, created_at
		FROM tournaments
		WHERE club_id = $1
		ORDER BY starts_at
	`
	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Tournament
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(&t.ID, &t.ClubID, &t.Title, &t.BuyInCents, &t.StartsAt, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
