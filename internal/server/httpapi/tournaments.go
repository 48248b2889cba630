package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/server/models"
	"clubtourney-server/internal/server/services"
)

// TournamentHandler is the thin CRUD surface over tournaments.
type TournamentHandler struct {
	tournaments *services.TournamentService
}

func NewTournamentHandler(tournaments *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments}
}

type createTournamentRequest struct {
	ClubID     string    `json:"club_id" binding:"required"`
	Title      string    `json:"title" binding:"required"`
	BuyInCents int64     `json:"buy_in_cents"`
	StartsAt   time.Time `json:"starts_at" binding:"required"`
}

func (h *TournamentHandler) Create(c *gin.Context) {
	role := roleFromContext(c)
	if role != models.RoleAdmin && role != models.RoleManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req createTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament payload"})
		return
	}

	t, err := h.tournaments.Create(c.Request.Context(), &models.Tournament{
		ClubID:     req.ClubID,
		Title:      req.Title,
		BuyInCents: req.BuyInCents,
		StartsAt:   req.StartsAt,
	})
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament payload"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, t)
}

func (h *TournamentHandler) GetByID(c *gin.Context) {
	t, err := h.tournaments.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TournamentHandler) ListByClub(c *gin.Context) {
	clubID := c.Query("club_id")
	if clubID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "club_id is required"})
		return
	}

	list, err := h.tournaments.ListByClub(c.Request.Context(), clubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, list)
}
