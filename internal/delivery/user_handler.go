package delivery

import (
	"net/http"
	"strconv"
	"user_admin/internal/domain"
	"user_admin/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	useCase domain.UserUseCase
	log     *logrus.Logger
}

func NewUserHandler(uc domain.UserUseCase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		useCase: uc,
		log:     logger,
	}
}

// UserRequest is the add/edit form body.
type UserRequest struct {
	UserName string   `json:"userName"`
	Password string   `json:"password"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (r *UserRequest) toDomain() *domain.User {
	user := &domain.User{
		UserName: r.UserName,
		Password: r.Password,
		Email:    r.Email,
	}
	for _, name := range r.Roles {
		user.Roles = append(user.Roles, domain.Role{Name: domain.RoleName(name)})
	}
	return user
}

func (h *UserHandler) RegisterRoutes(router gin.IRouter) {
	users := router.Group("/user")
	{
		users.POST("/add", h.AddUser)
		users.GET("/edit/:id", h.EditUser)
		users.POST("/edit/:id", h.UpdateUser)
		users.GET("/list", h.ListUsers)
		users.GET("/delete/:id", h.DeleteUser)
		users.DELETE("/delete/:id", h.DeleteUser)
	}
}

func (h *UserHandler) AddUser(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "AddUser")
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind add user request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.useCase.AddUser(c.Request.Context(), middleware.PrincipalFrom(c), req.toDomain())
	writeResult(c, handlerLogger, result, err)
}

func (h *UserHandler) EditUser(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "EditUser")
	id, ok := h.parseID(c, handlerLogger)
	if !ok {
		return
	}

	result, err := h.useCase.EditUser(c.Request.Context(), middleware.PrincipalFrom(c), id)
	writeResult(c, handlerLogger, result, err)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateUser")
	id, ok := h.parseID(c, handlerLogger)
	if !ok {
		return
	}
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind update user request for ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.useCase.UpdateUser(c.Request.Context(), middleware.PrincipalFrom(c), id, req.toDomain())
	writeResult(c, handlerLogger, result, err)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListUsers")
	result, err := h.useCase.ListUsers(c.Request.Context(), middleware.PrincipalFrom(c))
	writeResult(c, handlerLogger, result, err)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "DeleteUser")
	id, ok := h.parseID(c, handlerLogger)
	if !ok {
		return
	}

	result, err := h.useCase.DeleteUser(c.Request.Context(), middleware.PrincipalFrom(c), id)
	writeResult(c, handlerLogger, result, err)
}

func (h *UserHandler) parseID(c *gin.Context, log logrus.FieldLogger) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		log.Warnf("Invalid user ID parameter: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid user ID format")
		return 0, false
	}
	return id, true
}
