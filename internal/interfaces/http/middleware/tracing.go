package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request named after the route template and
// tags it with the request and tenant ids. Run it after RequestID and Tenant.
func Tracing(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		func(c *gin.Context) {
			span := trace.SpanFromContext(c.Request.Context())
			if span.IsRecording() {
				if id := GetRequestID(c); id != "" {
					span.SetAttributes(attribute.String("request_id", id))
				}
				if c.GetHeader(TenantHeaderKey) != "" {
					span.SetAttributes(attribute.String("tenant_id", c.GetHeader(TenantHeaderKey)))
				}
			}
			c.Next()
		},
	}
}
