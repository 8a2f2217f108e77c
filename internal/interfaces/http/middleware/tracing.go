package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys set on HTTP server spans
const (
	AttrRequestID  = "http.request_id"
	AttrStatusCode = "http.status_code"
	AttrClientIP   = "client.address"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns the default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "orderops",
		Enabled:     true,
	}
}

// Tracing returns the tracing middleware with the default configuration
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin so each request gets a server span that
// carries the request id. The request context passed to handlers holds the
// span, so service spans become its children.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanErrorMarker runs after the handler and marks the current span as an
// error for responses with status >= 400. Mount it after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			if id := getRequestIDFromContext(c); id != "" {
				span.SetAttributes(attribute.String(AttrRequestID, id))
			}
			span.SetAttributes(attribute.String(AttrClientIP, c.ClientIP()))
		}

		c.Next()

		if !span.SpanContext().IsValid() {
			return
		}
		status := c.Writer.Status()
		span.SetAttributes(attribute.Int(AttrStatusCode, status))
		if status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, statusDescription(status))
		}
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last().Err)
		}
	}
}

func statusDescription(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusNotFound:
		return "Not Found"
	case status == http.StatusConflict:
		return "Conflict"
	case status == http.StatusTooManyRequests:
		return "Too Many Requests"
	default:
		return "Client Error"
	}
}
