package delivery

import (
	"net/http"
	"user_admin/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter mounts the public login route and the token-protected /user routes.
func NewRouter(users *UserHandler, auth *AuthHandler, verifier middleware.PrincipalVerifier, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	auth.RegisterRoutes(router)

	protected := router.Group("/")
	protected.Use(middleware.JWTMiddleware(verifier, logger))
	users.RegisterRoutes(protected)

	return router
}
