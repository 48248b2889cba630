// Package httpapi exposes the HTTP surface of the server: the auth endpoints
// driving the session-credential subsystem and the guarded tournament routes.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"clubtourney-server/internal/logging"
	"clubtourney-server/internal/server/auth"
	"clubtourney-server/internal/server/services"
)

// NewRouter assembles the gin engine. The auth group matches auth.CookiePath
// so the refresh cookie is only ever sent to these endpoints.
func NewRouter(
	userService *services.UserService,
	sessionService *services.SessionService,
	tournamentService *services.TournamentService,
	tokenService *auth.TokenService,
	cookieDomain string,
	logger logging.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	ah := NewAuthHandler(userService, sessionService, tokenService, cookieDomain, logger)
	authGroup := r.Group(auth.CookiePath)
	{
		authGroup.POST("/register", ah.Register)
		authGroup.POST("/login", ah.Login)
		authGroup.POST("/refresh", ah.Refresh)
		authGroup.POST("/logout", ah.Logout)
	}

	th := NewTournamentHandler(tournamentService)
	api := r.Group("/api", AccessTokenGuard(tokenService))
	{
		api.GET("/tournaments", th.ListByClub)
		api.GET("/tournaments/:id", th.GetByID)
		api.POST("/tournaments", th.Create)
	}

	return r
}
