package services

import (
	"context"
	"database/sql"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/logging"
	"clubtourney-server/internal/server/models"
	"clubtourney-server/internal/server/repositories/repomanager"
)

// TournamentService is thin data-access glue over the tournaments
// repository; the interesting invariants of this system live in
// SessionService, not here.
type TournamentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTournamentService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *TournamentService {
	return &TournamentService{db: db, repomanager: m, logger: l.With("module", "tournament_service")}
}

func (s *TournamentService) Create(ctx context.Context, t *models.Tournament) (*models.Tournament, error) {
	if t.Title == "" || t.ClubID == "" || t.StartsAt.IsZero() {
		return nil, common.ErrorValidation
	}
	if t.Status == "" {
		t.Status = models.TournamentScheduled
	}

	repo := s.repomanager.Tournaments(s.db)
	created, err := repo.Create(ctx, t)
	if err != nil {
		s.logger.Error(ctx, "tournament insert failed", "error", err)
		return nil, common.ErrorInternal
	}
	return created, nil
}

func (s *TournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	repo := s.repomanager.Tournaments(s.db)
	t, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) ListByClub(ctx context.Context, clubID string) ([]*models.Tournament, error) {
	repo := s.repomanager.Tournaments(s.db)
	list, err := repo.ListByClub(ctx, clubID)
	if err != nil {
		s.logger.Error(ctx, "tournament list failed", "club_id", clubID, "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}
