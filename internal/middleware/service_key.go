package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "kopilka/internal/errors"
)

// ServiceKeyAuth admits only callers presenting the configured X-API-Key.
// It guards operator routes that act across households.
func ServiceKeyAuth(serviceAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checkServiceKey(c, serviceAPIKey) {
			return
		}
		c.Next()
	}
}

// checkServiceKey aborts the request and returns false unless X-API-Key
// matches the configured key.
func checkServiceKey(c *gin.Context, serviceAPIKey string) bool {
	if serviceAPIKey == "" {
		abortWithError(c, apperrors.ErrKeyNotConfigured)
		return false
	}
	key := c.GetHeader("X-API-Key")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(serviceAPIKey)) != 1 {
		abortWithError(c, apperrors.ErrInvalidAPIKey)
		return false
	}
	return true
}
