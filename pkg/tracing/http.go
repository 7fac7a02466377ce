package tracing

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// GinMiddleware traces each request and exposes the trace id to request
// scoped loggers.
func GinMiddleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		func(c *gin.Context) {
			ctx := WithTraceIDFromSpan(c.Request.Context())
			c.Request = c.Request.WithContext(ctx)
			if id := TraceID(ctx); id != "" {
				c.Header("X-Trace-ID", id)
			}
			c.Next()
		},
	}
}
