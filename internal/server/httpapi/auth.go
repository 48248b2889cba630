package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/logging"
	"clubtourney-server/internal/server/auth"
	"clubtourney-server/internal/server/models"
	"clubtourney-server/internal/server/services"
)

// AuthHandler glues the transport to the session subsystem: it moves the raw
// refresh secret between the cookie codec and the rotation protocol, and
// never inspects it otherwise.
type AuthHandler struct {
	users        *services.UserService
	sessions     *services.SessionService
	tokens       *auth.TokenService
	cookieDomain string
	logger       logging.Logger
}

func NewAuthHandler(
	users *services.UserService,
	sessions *services.SessionService,
	tokens *auth.TokenService,
	cookieDomain string,
	logger logging.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		tokens:       tokens,
		cookieDomain: cookieDomain,
		logger:       logger.With("module", "auth_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, models.RolePlayer)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	ctx := c.Request.Context()

	user, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.issueSession(c, user)
}

// Refresh redeems the refresh cookie for a fresh token pair. Every
// credential failure answers with the same 401 body and a cleared cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := auth.ExtractRefreshToken(c.GetHeader("Cookie"))
	if raw == "" {
		h.clearCookie(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()

	userID, next, err := h.sessions.Rotate(ctx, raw)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			h.clearCookie(c)
		}
		h.respondError(c, err)
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	access, err := h.tokens.CreateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.setRefreshCookie(c, next)
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// Logout revokes the whole family behind the presented cookie and clears it.
// Always answers 200: logout of an absent or dead session is still a logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw := auth.ExtractRefreshToken(c.GetHeader("Cookie")); raw != "" {
		_ = h.sessions.RevokeByToken(c.Request.Context(), raw)
	}

	h.clearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) issueSession(c *gin.Context, user *models.User) {
	ctx := c.Request.Context()

	refresh, err := h.sessions.CreateRefreshToken(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	access, err := h.tokens.CreateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.setRefreshCookie(c, refresh)
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, raw string) {
	maxAge := int(h.sessions.RefreshTokenValidity().Seconds())
	c.Header("Set-Cookie", auth.BuildRefreshCookie(raw, maxAge, h.cookieDomain))
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.Header("Set-Cookie", auth.BuildClearCookie(h.cookieDomain))
}

func (h *AuthHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
