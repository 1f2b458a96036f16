package server

import (
	"time"

	"github.com/examhub-dev/examhub/consts"
	"github.com/examhub-dev/examhub/ctxutil"
	"github.com/examhub-dev/examhub/logging/logger"

	"github.com/gin-gonic/gin"
)

// traceMiddleware ensures every request carries a trace id, honoring one
// supplied by the client.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithGinContext(c.Request.Context(), c)
		if traceID := c.GetHeader(consts.TraceKey); traceID != "" {
			ctx = ctxutil.SetTraceID(ctx, traceID)
		}
		ctx, traceID := ctxutil.EnsureTraceID(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(consts.TraceKey, traceID)

		c.Next()
	}
}

// loggingMiddleware emits one structured line per request.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
