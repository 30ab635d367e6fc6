// Package middleware 提供 Gin HTTP 中间件：日志、恢复、CORS、请求追踪、限流
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wyfcoding/spotexchange/pkg/logger"
	"github.com/wyfcoding/spotexchange/pkg/metrics"
	"github.com/wyfcoding/spotexchange/pkg/ratelimit"
)

const (
	// TraceIDHeader 请求追踪头
	TraceIDHeader = "X-Trace-ID"
)

// GinTrace 注入 trace_id 到请求上下文，客户端未提供时自动生成
func GinTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// GinLogging 记录请求日志与指标
func GinLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		metrics.ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(status), elapsed)

		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"elapsed", elapsed,
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Error(c.Request.Context(), "http request failed", args...)
		case status >= 400:
			logger.Warn(c.Request.Context(), "http request rejected", args...)
		default:
			logger.Info(c.Request.Context(), "http request completed", args...)
		}
	}
}

// GinRecovery 捕获 panic 并返回 500
func GinRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"panic", r, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// GinCORS 处理跨域请求
func GinCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// GinRateLimit 基于客户端 IP 的分布式限流
func GinRateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// 限流器不可用时放行，避免 Redis 故障拖垮交易入口
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.FormatFloat(retryAfter, 'f', 0, 64))
			c.AbortWithStatusJSON(429, gin.H{
				"code":    429,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
