// Package refreshtokens declares the storage contract for refresh-token
// lineages and provides its PostgreSQL implementation.
package refreshtokens

import (
	"context"

	"clubtourney-server/internal/server/models"
)

// Repository persists refresh-token rows. The session service is the only
// writer of this table.
//
// RevokeIfActive is the one concurrency primitive the rotation protocol
// relies on: a conditional update that reports whether it took effect. Every
// other guarantee (exactly-once redemption, family cut-off on replay) is
// built on top of it, never on in-process locking.
type Repository interface {
	// Create inserts a new row and returns its generated id.
	Create(ctx context.Context, token *models.RefreshToken) (string, error)

	// FindActiveByHash returns the row for hash only if it is unrevoked and
	// unexpired. Absent or inactive rows yield common.ErrorNotFound.
	FindActiveByHash(ctx context.Context, hash string) (*models.RefreshToken, error)

	// IsHashKnownAndRevoked reports whether a row with this hash exists and
	// has been revoked, regardless of expiry. A true result on a rotation
	// attempt is the replay signal.
	IsHashKnownAndRevoked(ctx context.Context, hash string) (bool, error)

	// FindFamilyByHash resolves the family id for a hash in any state.
	// Unknown hashes yield common.ErrorNotFound.
	FindFamilyByHash(ctx context.Context, hash string) (string, error)

	// RevokeIfActive marks the row revoked only if it is currently
	// unrevoked, and reports whether the revoke took effect.
	RevokeIfActive(ctx context.Context, id string) (bool, error)

	// RevokeFamily marks every unrevoked row of the family revoked.
	// Idempotent; revoking an already-revoked family is a no-op.
	RevokeFamily(ctx context.Context, familyID string) error
}
