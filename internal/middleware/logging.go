package middleware

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// AccessLog logs one line per request and turns handler panics into a 500.
func AccessLog(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			reqID := httpcontext.RequestID(ctx)

			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic while serving request",
						zap.String("request_id", reqID),
						zap.Any("panic", rec),
						zap.Stack("stack"))
					respond(ctx, http.StatusInternalServerError, transport.NewError(string(domain.ErrCodeInternal), "internal error", nil))
				}

				fields := []zap.Field{
					zap.String("request_id", reqID),
					zap.ByteString("method", ctx.Method()),
					zap.ByteString("path", ctx.Path()),
					zap.Int("status", ctx.Response.StatusCode()),
					zap.Duration("latency", time.Since(start)),
				}
				if userID, ok := ctx.UserValue(httpcontext.UserIDValue).(string); ok {
					fields = append(fields, zap.String("user_id", userID))
				}
				logger.Info("request", fields...)
			}()

			next(ctx)
		}
	}
}
