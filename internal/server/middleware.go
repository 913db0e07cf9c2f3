package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/tweeklike/internal/logger"
)

// requestLogger writes one line per request to the application log.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.With("server")
		keyvals := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			keyvals = append(keyvals, "error", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("Request failed", keyvals...)
		case c.Writer.Status() >= 400:
			log.Warn("Request rejected", keyvals...)
		default:
			log.Info("Request", keyvals...)
		}
	}
}
