// Package services contains server-side business logic. This file implements
// SessionService, the refresh-token rotation protocol: lineage creation,
// exactly-once redemption and the family-wide response to detected replay.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/dbx"
	"clubtourney-server/internal/logging"
	"clubtourney-server/internal/server/auth"
	"clubtourney-server/internal/server/config"
	"clubtourney-server/internal/server/models"
	"clubtourney-server/internal/server/repositories/repomanager"
)

// refreshSecretLength is the length of the raw alphanumeric refresh secret.
const refreshSecretLength = 64

// errNoActiveToken is an internal marker: the presented hash matched no
// active row. It never leaves this package; callers see ErrorUnauthorized.
var errNoActiveToken = errors.New("no active refresh token")

// SessionService owns the refresh-token lifecycle. It holds no mutable state
// beyond the DB handle; exactly-once redemption rests entirely on the
// store's conditional revoke, so any number of concurrent instances is safe.
type SessionService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	refreshTokenValidityDuration time.Duration
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *SessionService {
	return &SessionService{
		db:                           db,
		repomanager:                  m,
		logger:                       l.With("module", "session_service"),
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// RefreshTokenValidity returns the configured lifetime; the transport uses
// it as the cookie Max-Age so cookie and row expire together.
func (s *SessionService) RefreshTokenValidity() time.Duration {
	return s.refreshTokenValidityDuration
}

// CreateRefreshToken starts a new lineage for userID: a fresh random secret,
// a fresh family id, one persisted row. The returned raw secret is the only
// moment it exists outside this subsystem; only its hash is stored.
func (s *SessionService) CreateRefreshToken(ctx context.Context, userID string) (string, error) {
	raw, err := common.MakeRandAlphanumString(refreshSecretLength)
	if err != nil {
		return "", common.ErrorInternal
	}

	repo := s.repomanager.RefreshTokens(s.db)
	_, err = repo.Create(ctx, &models.RefreshToken{
		TokenHash: auth.HashToken(raw),
		UserID:    userID,
		FamilyID:  uuid.NewString(),
		ExpiresAt: time.Now().Add(s.refreshTokenValidityDuration),
	})
	if err != nil {
		s.logger.Error(ctx, "refresh token insert failed", "user_id", userID, "error", err)
		return "", common.ErrorInternal
	}

	return raw, nil
}

// Rotate redeems raw for its single descendant. On success it returns the
// owner's user id and the new raw secret, having revoked the redeemed row
// and inserted the descendant in the same family within one transaction.
//
// When no active row matches — unknown secret, expired, already consumed, or
// lost a concurrent race — the caller gets ErrorUnauthorized with one uniform
// shape. If the hash turns out to be known and revoked, that is a replay of a
// consumed token, and the whole family is revoked before returning.
func (s *SessionService) Rotate(ctx context.Context, raw string) (string, string, error) {
	hash := auth.HashToken(raw)

	var userID, next string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		current, err := repo.FindActiveByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return errNoActiveToken
			}
			return err
		}

		effective, err := repo.RevokeIfActive(ctx, current.ID)
		if err != nil {
			return err
		}
		if !effective {
			// A concurrent Rotate consumed this row between the lookup and
			// the revoke. Treat as not active; the detection path decides.
			return errNoActiveToken
		}

		next, err = common.MakeRandAlphanumString(refreshSecretLength)
		if err != nil {
			return err
		}
		if _, err := repo.Create(ctx, &models.RefreshToken{
			TokenHash: auth.HashToken(next),
			UserID:    current.UserID,
			FamilyID:  current.FamilyID,
			ExpiresAt: time.Now().Add(s.refreshTokenValidityDuration),
		}); err != nil {
			return err
		}

		userID = current.UserID
		return nil
	})
	if err == nil {
		return userID, next, nil
	}
	if !errors.Is(err, errNoActiveToken) {
		s.logger.Error(ctx, "refresh token rotation failed", "error", err)
		return "", "", common.ErrorInternal
	}

	s.handlePossibleReplay(ctx, hash)
	return "", "", common.ErrorUnauthorized
}

// RevokeByToken implements logout: the whole family behind raw is revoked,
// whatever state the presented token is in. Unknown tokens and
// already-revoked families are no-op successes. Store failures are logged
// and swallowed; logout is best-effort, and anything that survives is caught
// by the replay path on its next use.
func (s *SessionService) RevokeByToken(ctx context.Context, raw string) error {
	hash := auth.HashToken(raw)
	repo := s.repomanager.RefreshTokens(s.db)

	familyID, err := repo.FindFamilyByHash(ctx, hash)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "logout family lookup failed", "error", err)
		}
		return nil
	}

	if err := repo.RevokeFamily(ctx, familyID); err != nil {
		s.logger.Error(ctx, "logout family revoke failed", "family_id", familyID, "error", err)
	}
	return nil
}

// handlePossibleReplay runs after a rotation attempt found no active row.
// A hash that is known and revoked means a token is being redeemed a second
// time: revoke every descendant of its lineage. Failures here are logged
// only — the triggering request is already getting Unauthorized, and the
// response must not differ based on internal state.
func (s *SessionService) handlePossibleReplay(ctx context.Context, hash string) {
	repo := s.repomanager.RefreshTokens(s.db)

	revoked, err := repo.IsHashKnownAndRevoked(ctx, hash)
	if err != nil {
		s.logger.Error(ctx, "replay check failed", "error", err)
		return
	}
	if !revoked {
		return
	}

	familyID, err := repo.FindFamilyByHash(ctx, hash)
	if err != nil {
		s.logger.Error(ctx, "family lookup failed after replay", "error", err)
		return
	}

	s.logger.Warn(ctx, "refresh token replay detected, revoking family", "family_id", familyID)

	if err := repo.RevokeFamily(ctx, familyID); err != nil {
		s.logger.Error(ctx, "family revoke failed after replay", "family_id", familyID, "error", err)
	}
}
