package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// StatusSource reports dependency health.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
	}
	if h.monitor == nil {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}

	status := h.monitor.GetStatus()
	payload["services"] = status.Checks
	payload["buffer"] = map[string]int{
		"pending": status.BufferSize,
		"dead":    status.DeadEntries,
	}

	if status.Online {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
