package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/token"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/logger"
)

const userValue = "auth_user"

// AccessVerifier checks bearer tokens.
type AccessVerifier interface {
	VerifyAccess(tokenString string) (*token.Claims, error)
}

// IdentityResolver maps a verified subject to a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (*domain.User, error)
}

// JWTAuth admits requests carrying a valid access token whose subject is
// still a registered user. The user is stored on the request for handlers.
func JWTAuth(verifier AccessVerifier, resolver IdentityResolver, adapter *httpcontext.Adapter, base *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if base == nil {
		base = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stdCtx, cancel := adapter.Attach(ctx)
			defer cancel()
			log := logger.FromContext(stdCtx, base)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				reject(ctx, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				log.Info("rejected token", zap.String("path", string(ctx.Path())))
				reject(ctx, err.Error())
				return
			}

			user, err := resolver.Resolve(stdCtx, claims.Email())
			if err != nil {
				if domain.IsClassified(err) {
					reject(ctx, err.Error())
					return
				}
				log.Error("identity lookup failed", zap.Error(err))
				respond(ctx, http.StatusInternalServerError, transport.NewError(string(domain.ErrCodeInternal), "identity lookup failed", nil))
				return
			}
			if user.ID != claims.UserID {
				log.Warn("token user id does not match its subject", zap.String("user_id", claims.UserID))
				reject(ctx, domain.ErrTokenVerification.Error())
				return
			}

			ctx.SetUserValue(userValue, user)
			ctx.SetUserValue(httpcontext.UserIDValue, user.ID)
			next(ctx)
		}
	}
}

// CurrentUser returns the user authenticated by JWTAuth.
func CurrentUser(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	user, ok := ctx.UserValue(userValue).(*domain.User)
	return user, ok && user != nil
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func reject(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="api"`)
	respond(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
}

func respond(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
