package logger

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinKey is where GinMiddleware stores the request-scoped logger
const GinKey = "logger"

// GinOption configures GinMiddleware
type GinOption func(*ginOptions)

type ginOptions struct {
	skipPaths []string
}

// WithSkipPaths disables access logging for exact request paths such as
// health probes. The request logger is still attached.
func WithSkipPaths(paths ...string) GinOption {
	return func(o *ginOptions) {
		o.skipPaths = append(o.skipPaths, paths...)
	}
}

// GinMiddleware logs one entry per HTTP request and stores a request-scoped
// logger in the gin context and the request context.
func GinMiddleware(logger *zap.Logger, opts ...GinOption) gin.HandlerFunc {
	options := &ginOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		ctx, reqLogger := WithRequestID(c.Request.Context(), WithTraceContext(c.Request.Context(), logger), c.GetString("request_id"))
		reqLogger = reqLogger.With(zap.String("method", c.Request.Method), zap.String("path", path))
		c.Set(GinKey, reqLogger)
		c.Request = c.Request.WithContext(WithContext(ctx, reqLogger))

		c.Next()

		if slices.Contains(options.skipPaths, path) {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		const msg = "HTTP Request"
		switch {
		case status >= 500:
			reqLogger.Error(msg, fields...)
		case status >= 400:
			reqLogger.Warn(msg, fields...)
		default:
			reqLogger.Info(msg, fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 response in the API envelope
// and logs it with the stack.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := c.GetString("request_id")
				logger.Error("Panic recovered",
					zap.String("request_id", requestID),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":       "ERR_INTERNAL",
						"message":    "An unexpected error occurred",
						"request_id": requestID,
					},
				})
			}
		}()
		c.Next()
	}
}

// GetGinLogger retrieves the request-scoped logger from gin context
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(GinKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
