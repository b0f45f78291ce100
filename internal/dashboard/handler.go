package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/transport"
	"github.com/ldworks/trainee-management/pkg/logger"
)

type ServiceAPI interface {
	Summary(ctx context.Context, actor *auth.Actor) (*Summary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("GetSummary: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.Service.Summary(r.Context(), actor)
	if err != nil {
		h.Logger.Error("GetSummary: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}
