package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusconnect/campusconnect/internal/pkg/logger"
)

// RequestLogger logs every request once it completed.
func RequestLogger() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("ip", c.ClientIP()).
			Dur("duration", time.Since(start)).
			Str("uid", UID(c)).
			Msg("Request handled")
	}
}
