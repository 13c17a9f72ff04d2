package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/auth"
)

const ctxUserID = "userID"

// RequestLogger logs one line per request once the handler has run.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	sanitize := strings.NewReplacer("\n", "", "\r", "").Replace
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     sanitize(c.Request.URL.Path),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"user":     c.GetString(ctxUserID),
		}).Info("request")
	}
}

// RequireAuth accepts "Authorization: Bearer <token>" and stores the caller's user id.
func RequireAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortAuth(c, apperrors.ErrTokenRequired)
			return
		}
		claims, err := issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			abortAuth(c, err)
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

func abortAuth(c *gin.Context, err error) {
	kind, msg := apperrors.Describe(err)
	c.AbortWithStatusJSON(statusFor(kind), gin.H{"message": msg})
}

// NewCORS creates the CORS middleware for the given allowed origins.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
