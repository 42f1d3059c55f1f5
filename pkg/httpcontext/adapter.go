package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

const (
	// UserIDValue is the fasthttp user value the auth middleware stores the caller's id under.
	UserIDValue = "auth_user_id"

	requestIDValue  = "request_id"
	requestIDHeader = "X-Request-ID"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach derives a request-scoped context with the adapter timeout, the request
// id and, once authenticated, the caller's id.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set(requestIDHeader, reqID)

	if userID, ok := ctx.UserValue(UserIDValue).(string); ok && userID != "" {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}
	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// RequestID returns the id of the request, taking it from X-Request-ID or
// generating one. The id is stable for the lifetime of ctx.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue(requestIDValue).(string); ok {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader)))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(requestIDValue, id)
	return id
}
