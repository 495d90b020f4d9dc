package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceContextKey Trace ID 在 Context 中的键
const TraceContextKey = "traceID"

const traceHeader = "X-Trace-Id"

// TraceMiddleware 每个请求一个 Trace ID：调用方带了就沿用，
// 没带就生成，同时写进 Gin Context、标准 Context 和响应头
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = strings.ReplaceAll(uuid.New().String(), "-", "")
		}

		c.Set(TraceContextKey, traceID)
		ctx := context.WithValue(c.Request.Context(), TraceContextKey, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(traceHeader, traceID)
		c.Next()
	}
}

// TraceID 取出当前请求的 Trace ID，没有则返回空串
func TraceID(c *gin.Context) string {
	return c.GetString(TraceContextKey)
}
