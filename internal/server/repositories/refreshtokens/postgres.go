package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/dbx"
	"clubtourney-server/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by both
// *sql.DB and *sql.Tx), so rotation can run it inside a transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) (string, error) {
	query := `
		INSERT INTO refresh_tokens (token_hash, user_id, family_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		token.TokenHash, token.UserID, token.FamilyID, token.ExpiresAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) FindActiveByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, family_id, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > now()
	`
	token := &models.RefreshToken{TokenHash: hash}
	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&token.ID, &token.UserID, &token.FamilyID, &token.ExpiresAt, &token.RevokedAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

func (r *PostgresRepository) IsHashKnownAndRevoked(ctx context.Context, hash string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE token_hash = $1 AND revoked_at IS NOT NULL
		)
	`
	var revoked bool
	if err := r.db.QueryRowContext(ctx, query, hash).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

func (r *PostgresRepository) FindFamilyByHash(ctx context.Context, hash string) (string, error) {
	query := `
		SELECT family_id FROM refresh_tokens
		WHERE token_hash = $1
	`
	var familyID string
	if err := r.db.QueryRowContext(ctx, query, hash).Scan(&familyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return familyID, nil
}

// RevokeIfActive performs the conditional update the rotation protocol
// depends on. The revoked_at IS NULL predicate plus the affected-row check
// is what makes redemption exactly-once under concurrent rotate calls.
func (r *PostgresRepository) RevokeIfActive(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE id = $1 AND revoked_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresRepository) RevokeFamily(ctx context.Context, familyID string) error {
	query := `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE family_id = $1 AND revoked_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, familyID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
