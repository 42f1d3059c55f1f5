package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

type ProfileHandler struct {
	baseHandler
}

func NewProfileHandler(adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{baseHandler: newBaseHandler(adapter, logger)}
}

// @Summary Current user
// @Tags profile
// @Success 200 {object} transport.Envelope
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}
