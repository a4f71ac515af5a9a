package delivery

import (
	"net/http"
	"user_admin/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase domain.AuthUseCase
	log     *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(uc domain.AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

// LoginRequest defines the expected JSON body for login requests
type LoginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse defines the JSON response for successful login
type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/login", h.Login)
}

// Login handles the POST /login request
func (h *AuthHandler) Login(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Login")
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind login request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.useCase.Login(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		handlerLogger.Errorf("Login failed with internal error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !res.Authenticated {
		handlerLogger.Warnf("Authentication failed for user %s: %s", req.UserName, res.ErrorMessage)
		ErrorResponse(c, http.StatusUnauthorized, res.ErrorMessage)
		return
	}

	handlerLogger.Infof("Authentication successful for UserID: %d", res.UserID)
	c.JSON(http.StatusOK, LoginResponse{Token: res.Token})
}
