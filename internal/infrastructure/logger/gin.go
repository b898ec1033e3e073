package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ginRequestIDKey is where the RequestID middleware leaves the id on the gin context
const ginRequestIDKey = "request_id"

// accessMessage is the message of the one access line written per request
const accessMessage = "request served"

// GinMiddleware scopes a logger to each request and writes one access line when
// the handler returns. Handlers reach the scoped logger through L(ctx).
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		req := c.Request

		ctx, scoped := WithRequestID(req.Context(),
			base.With(zap.String("method", req.Method), zap.String("path", req.URL.Path)),
			c.GetString(ginRequestIDKey),
		)
		c.Request = req.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := make([]zap.Field, 0, 6)
		fields = append(fields,
			zap.Int("status", status),
			zap.Duration("latency", time.Since(started)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		)
		if q := req.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if ce := WithTraceContext(c.Request.Context(), scoped).Check(accessLevel(status), accessMessage); ce != nil {
			ce.Write(fields...)
		}
	}
}

// accessLevel maps a response status to the access line level: rejections warn,
// failures error
func accessLevel(status int) zapcore.Level {
	if status >= http.StatusInternalServerError {
		return zapcore.ErrorLevel
	}
	if status >= http.StatusBadRequest {
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a handler panic into a 500 and logs it with its stack
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			base.Error("handler panicked",
				zap.String(ginRequestIDKey, c.GetString(ginRequestIDKey)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", recovered),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}
