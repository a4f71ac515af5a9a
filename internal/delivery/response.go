package delivery

import (
	"errors"
	"net/http"
	"user_admin/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func ValidationErrorResponse(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, Response{
		Status:  "Fail",
		Message: "Validation failed",
		Errors:  fieldErrors,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidUserID), errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeResult renders a use case outcome. Internal error details are logged, not returned.
func writeResult(c *gin.Context, log logrus.FieldLogger, result *domain.OperationResult, err error) {
	if err != nil {
		statusCode := mapErrorToStatus(err)
		if statusCode == http.StatusInternalServerError {
			log.Errorf("Handler Error: %v", err)
			ErrorResponse(c, statusCode, "Internal server error")
			return
		}
		log.Warnf("Handler Error: Mapped error to HTTP Status %d: %v", statusCode, err)
		ErrorResponse(c, statusCode, err.Error())
		return
	}

	switch result.Kind {
	case domain.ResultSuccess:
		SuccessResponse(c, http.StatusOK, result.Message, result.Payload)
	case domain.ResultValidationFailure:
		ValidationErrorResponse(c, result.FieldErrors)
	case domain.ResultAuthorizationFailure:
		ErrorResponse(c, http.StatusForbidden, result.Reason)
	default:
		log.Errorf("Handler Error: Unknown result kind %v", result.Kind)
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
