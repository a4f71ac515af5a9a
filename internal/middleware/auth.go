package middleware

import (
	"errors"
	"net/http"
	"time"
	"user_admin/internal/auth"
	"user_admin/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	principalKey    = "principal"
	RequestIDHeader = "X-Request-ID"
)

// PrincipalVerifier resolves an Authorization header value to a principal.
type PrincipalVerifier interface {
	PrincipalFromHeader(header string) (domain.Principal, error)
}

func JWTMiddleware(verifier PrincipalVerifier, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "Fail", "message": "Authorization header required"})
			return
		}

		principal, err := verifier.PrincipalFromHeader(authHeader)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token expired"
			}
			log.Warnf("Middleware: Rejected bearer token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "Fail", "message": message})
			return
		}

		log.Debugf("Middleware: Authenticated principal %s with roles %v", principal.ID, principal.Roles)
		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the principal set by JWTMiddleware, or the zero (unauthenticated) principal.
func PrincipalFrom(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, reqID)
		c.Next()
	}
}

// RequestLogger logs each request on arrival and on completion. The completion entry carries
// the principal resolved by JWTMiddleware, so denied and failed operations can be traced to a caller.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		fields := logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"remote_ip": c.ClientIP(),
		}
		if reqID := c.Writer.Header().Get(RequestIDHeader); reqID != "" {
			fields["request_id"] = reqID
		}
		logger.WithFields(fields).WithField("user_agent", c.Request.UserAgent()).Debug("Incoming request")

		c.Next()

		entry := logger.WithFields(fields).WithFields(logrus.Fields{
			"status_code": c.Writer.Status(),
			"latency_ms":  time.Since(started).Milliseconds(),
		})
		if principal := PrincipalFrom(c); principal.ID != "" {
			entry = entry.WithFields(logrus.Fields{
				"principal": principal.ID,
				"roles":     principal.Roles,
			})
		}

		switch status := c.Writer.Status(); {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case status >= http.StatusInternalServerError:
			entry.Error("Request completed with server error")
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			entry.Warn("Request denied")
		case status >= http.StatusBadRequest:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}
