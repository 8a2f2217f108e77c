package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/orderops/backend/internal/infrastructure/logger"
	"github.com/orderops/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client supplied idempotency key
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength caps accepted idempotency keys
const MaxIdempotencyKeyLength = 255

// Idempotency records the Idempotency-Key of mutating requests and rejects a
// key that was already used with 409. Requests without the header pass
// through. Store failures are logged and the request proceeds.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest,
				"Idempotency-Key is too long",
				GetRequestID(c),
			))
			return
		}

		scoped := c.Request.Method + " " + c.FullPath() + " " + key
		fresh, err := store.MarkProcessed(c.Request.Context(), scoped, ttl)
		if err != nil {
			logger.GetGinLogger(c).Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyConflict,
				"Request with this Idempotency-Key was already processed",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
