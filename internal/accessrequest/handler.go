package accessrequest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/transport"
	"github.com/ldworks/trainee-management/pkg/logger"
)

type ServiceAPI interface {
	Submit(dto *SubmitAccessRequestDTO) (*AccessRequest, error)
	GetByID(actor *auth.Actor, id int64) (*AccessRequest, error)
	List(actor *auth.Actor, filter ListFilter) ([]*AccessRequest, error)
	Review(ctx context.Context, actor *auth.Actor, id int64, dto *ReviewAccessRequestDTO) (*AccessRequest, error)
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

// SubmitRequest is the only unauthenticated write endpoint in the API.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var dto SubmitAccessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Submit(&dto)
	if err != nil {
		h.Logger.Error("SubmitRequest: service error", "error", err, "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SubmitRequest: access request submitted",
		"access_request_id", req.ID,
		"requested_role", req.RequestedRole)

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("GetRequest: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid access request ID")
		return
	}

	req, err := h.Service.GetByID(actor, id)
	if err != nil {
		h.Logger.Error("GetRequest: service error", "error", err, "access_request_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ListRequests: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := ListFilter{Limit: 20, Offset: 0}

	if status := r.URL.Query().Get("status"); status != "" {
		if status != StatusPending && status != StatusApproved && status != StatusRejected {
			h.WriteError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filter.Status = status
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			filter.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	requests, err := h.Service.List(actor, filter)
	if err != nil {
		h.Logger.Error("ListRequests: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"access_requests": requests,
		"limit":           filter.Limit,
		"offset":          filter.Offset,
	})
}

func (h *Handler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ReviewRequest: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid access request ID")
		return
	}

	var dto ReviewAccessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReviewRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Review(r.Context(), actor, id, &dto)
	if err != nil {
		h.Logger.Error("ReviewRequest: service error",
			"error", err,
			"access_request_id", id,
			"decision", dto.Decision,
			"user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ReviewRequest: access request decided",
		"access_request_id", id,
		"decision", dto.Decision,
		"user_id", actor.ID)

	h.WriteJSON(w, http.StatusOK, req)
}
