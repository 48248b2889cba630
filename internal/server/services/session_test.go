package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/dbx"
	"clubtourney-server/internal/logging"
	"clubtourney-server/internal/server/auth"
	"clubtourney-server/internal/server/config"
	"clubtourney-server/internal/server/models"
	refreshtokensrepo "clubtourney-server/internal/server/repositories/refreshtokens"
	tournamentsrepo "clubtourney-server/internal/server/repositories/tournaments"
	usersrepo "clubtourney-server/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newSessionService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *SessionService {
	t.Helper()
	cfg := &config.Config{RefreshTokenValidityDuration: 24 * time.Hour}
	return NewSessionService(db, rm, cfg, testLogger())
}

// memoryTokenRepo is a semantic in-memory refresh-token store. It honors the
// same contract as the Postgres adapter (conditional revoke, active-only
// lookup) so the protocol scenarios run against real state transitions.
type memoryTokenRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*models.RefreshToken
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{rows: make(map[string]*models.RefreshToken)}
}

func (m *memoryTokenRepo) Create(_ context.Context, token *models.RefreshToken) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := "tok-" + strconv.Itoa(m.seq)
	row := *token
	row.ID = id
	row.CreatedAt = time.Now()
	m.rows[id] = &row
	return id, nil
}

func (m *memoryTokenRepo) FindActiveByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenHash == hash && !row.IsRevoked() && !row.IsExpired() {
			cp := *row
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memoryTokenRepo) IsHashKnownAndRevoked(_ context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenHash == hash && row.IsRevoked() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryTokenRepo) FindFamilyByHash(_ context.Context, hash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenHash == hash {
			return row.FamilyID, nil
		}
	}
	return "", common.ErrorNotFound
}

func (m *memoryTokenRepo) RevokeIfActive(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.IsRevoked() {
		return false, nil
	}
	now := time.Now()
	row.RevokedAt = &now
	return true, nil
}

func (m *memoryTokenRepo) RevokeFamily(_ context.Context, familyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, row := range m.rows {
		if row.FamilyID == familyID && !row.IsRevoked() {
			row.RevokedAt = &now
		}
	}
	return nil
}

func (m *memoryTokenRepo) rowByHash(hash string) *models.RefreshToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenHash == hash {
			cp := *row
			return &cp
		}
	}
	return nil
}

// erroringTokenRepo fails every operation with a store error.
type erroringTokenRepo struct{}

func (erroringTokenRepo) Create(context.Context, *models.RefreshToken) (string, error) {
	return "", errors.New("db down")
}
func (erroringTokenRepo) FindActiveByHash(context.Context, string) (*models.RefreshToken, error) {
	return nil, errors.New("db down")
}
func (erroringTokenRepo) IsHashKnownAndRevoked(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}
func (erroringTokenRepo) FindFamilyByHash(context.Context, string) (string, error) {
	return "", errors.New("db down")
}
func (erroringTokenRepo) RevokeIfActive(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}
func (erroringTokenRepo) RevokeFamily(context.Context, string) error {
	return errors.New("db down")
}

type fakeRepoManager struct {
	tokens refreshtokensrepo.Repository
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return nil }
func (f *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository {
	return f.tokens
}
func (f *fakeRepoManager) Tournaments(dbx.DBTX) tournamentsrepo.Repository { return nil }

// --- tests ---

func TestCreateRefreshToken_PersistsOnlyHash(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemoryTokenRepo()
	s := newSessionService(t, db, &fakeRepoManager{tokens: store})

	raw, err := s.CreateRefreshToken(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CreateRefreshToken error: %v", err)
	}
	if len(raw) != refreshSecretLength {
		t.Fatalf("expected %d-char secret, got %d", refreshSecretLength, len(raw))
	}

	row := store.rowByHash(auth.HashToken(raw))
	if row == nil {
		t.Fatalf("expected a row stored under the secret's hash")
	}
	if row.TokenHash == raw {
		t.Fatalf("raw secret must never be persisted")
	}
	if row.UserID != "u1" || row.FamilyID == "" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.IsRevoked() || row.IsExpired() {
		t.Fatalf("fresh token must be active")
	}
}

func TestRotate_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemoryTokenRepo()
	s := newSessionService(t, db, &fakeRepoManager{tokens: store})

	r1, err := s.CreateRefreshToken(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CreateRefreshToken error: %v", err)
	}
	family := store.rowByHash(auth.HashToken(r1)).FamilyID

	mock.ExpectBegin()
	mock.ExpectCommit()

	userID, r2, err := s.Rotate(context.Background(), r1)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("unexpected user id: %q", userID)
	}
	if r2 == "" || r2 == r1 {
		t.Fatalf("expected a fresh secret, got %q", r2)
	}

	if old := store.rowByHash(auth.HashToken(r1)); !old.IsRevoked() {
		t.Fatalf("redeemed token must be revoked")
	}
	next := store.rowByHash(auth.HashToken(r2))
	if next == nil || next.IsRevoked() {
		t.Fatalf("descendant must exist and be active")
	}
	if next.FamilyID != family {
		t.Fatalf("descendant must stay in family %q, got %q", family, next.FamilyID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRotate_UnknownToken_Unauthorized(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemoryTokenRepo()
	s := newSessionService(t, db, &fakeRepoManager{tokens: store})

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, _, err := s.Rotate(context.Background(), "never-issued")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

func TestRotate_Replay_RevokesWholeFamily(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemoryTokenRepo()
	s := newSessionService(t, db, &fakeRepoManager{tokens: store})
	ctx := context.Background()

	r1, err := s.CreateRefreshToken(ctx, "u1")
	if err != nil {
		t.Fatalf("CreateRefreshToken error: %v", err)
	}

	// Legitimate rotation: R1 -> R2.
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, r2, err := s.Rotate(ctx, r1)
	if err != nil {
		t.Fatalf("first Rotate error: %v", err)
	}

	// Replay of the consumed R1: Unauthorized, and the family dies.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, _, err = s.Rotate(ctx, r1)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("replay must yield common.ErrorUnauthorized, got %v", err)
	}
	if row := store.rowByHash(auth.HashToken(r2)); !row.IsRevoked() {
		t.Fatalf("descendant must be revoked after replay detection")
	}

	// The legitimate descendant is now rejected too.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, _, err = s.Rotate(ctx, r2)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("descendant after family revoke must be rejected, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRotate_UniformErrorShape(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemoryTokenRepo()
	s := newSessionService(t, db, &fakeRepoManager{tokens: store})
	ctx := context.Background()

	r1, _ := s.CreateRefreshToken(ctx, "u1")
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, _, err := s.Rotate(ctx, r1)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, _, replayErr := s.Rotate(ctx, r1)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, _, unknownErr := s.Rotate(ctx, "never-issued")

	if replayErr.Error() != unknownErr.Error() {
		t.Fatalf("replayed and unknown tokens must be indistinguishable: %q vs %q",
			replayErr.Error(), unknownErr.Error())
	}
}

func TestRotate_LostRace_FallsThroughToDetection(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemoryTokenRepo()
	s := newSessionService(t, db, &fakeRepoManager{tokens: store})
	ctx := context.Background()

	raw, _ := s.CreateRefreshToken(ctx, "u1")
	hash := auth.HashToken(raw)

	// Simulate the winner revoking the row after the loser's lookup: the
	// conditional revoke reports no effect and the loser must not mint a
	// descendant.
	row, err := store.FindActiveByHash(ctx, hash)
	if err != nil {
		t.Fatalf("FindActiveByHash error: %v", err)
	}
	if _, err := store.RevokeIfActive(ctx, row.ID); err != nil {
		t.Fatalf("RevokeIfActive error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, _, err = s.Rotate(ctx, raw)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("race loser must get common.ErrorUnauthorized, got %v", err)
	}
}

func TestRotate_StoreError_Internal(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := newSessionService(t, db, &fakeRepoManager{tokens: erroringTokenRepo{}})

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, _, err := s.Rotate(context.Background(), "whatever")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("store failure must map to common.ErrorInternal, got %v", err)
	}
}

func TestRevokeByToken_RevokesFamily(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemoryTokenRepo()
	s := newSessionService(t, db, &fakeRepoManager{tokens: store})
	ctx := context.Background()

	r1, _ := s.CreateRefreshToken(ctx, "u1")
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, r2, err := s.Rotate(ctx, r1)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}

	// Logout with the consumed ancestor still kills the whole family.
	if err := s.RevokeByToken(ctx, r1); err != nil {
		t.Fatalf("RevokeByToken error: %v", err)
	}
	if row := store.rowByHash(auth.HashToken(r2)); !row.IsRevoked() {
		t.Fatalf("family member must be revoked after logout")
	}

	// Idempotent.
	if err := s.RevokeByToken(ctx, r1); err != nil {
		t.Fatalf("repeat RevokeByToken error: %v", err)
	}
}

func TestRevokeByToken_UnknownToken_NoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newSessionService(t, db, &fakeRepoManager{tokens: newMemoryTokenRepo()})

	if err := s.RevokeByToken(context.Background(), "never-issued"); err != nil {
		t.Fatalf("logout with unknown token must be a no-op success, got %v", err)
	}
}

func TestRevokeByToken_StoreError_Swallowed(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newSessionService(t, db, &fakeRepoManager{tokens: erroringTokenRepo{}})

	if err := s.RevokeByToken(context.Background(), "whatever"); err != nil {
		t.Fatalf("logout is best-effort; store errors must not surface, got %v", err)
	}
}
