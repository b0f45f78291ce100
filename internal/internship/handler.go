package internship

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
	Submit(actor *auth.Actor, dto *CreateRequestDTO) (*Request, error)
	GetByID(actor *auth.Actor, id int64) (*Request, error)
	List(actor *auth.Actor, filter ListFilter) ([]*Request, error)
	Transition(ctx context.Context, actor *auth.Actor, id int64, dto *TransitionDTO) (*Request, error)
	Cancel(ctx context.Context, actor *auth.Actor, id int64, dto *CancelDTO) (*Request, error)
	SubmitReport(actor *auth.Actor, requestID int64, dto *SubmitReportDTO) (*Report, error)
	ListReports(actor *auth.Actor, requestID int64) ([]*Report, error)
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

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("CreateRequest: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Submit(actor, &dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateRequest: internship request submitted",
		"request_id", req.ID,
		"user_id", actor.ID,
		"department_id", req.DepartmentID)

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("GetRequest: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	req, err := h.Service.GetByID(actor, id)
	if err != nil {
		h.Logger.Error("GetRequest: service error", "error", err, "request_id", id, "user_id", actor.ID)
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
		if !IsValidStatus(status) {
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
		"requests": requests,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func (h *Handler) TransitionRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("TransitionRequest: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var dto TransitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("TransitionRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Transition(r.Context(), actor, id, &dto)
	if err != nil {
		h.Logger.Error("TransitionRequest: service error",
			"error", err,
			"request_id", id,
			"to_status", dto.ToStatus,
			"user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("TransitionRequest: request transitioned",
		"request_id", id,
		"to_status", dto.ToStatus,
		"user_id", actor.ID)

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("CancelRequest: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var dto CancelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CancelRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Cancel(r.Context(), actor, id, &dto)
	if err != nil {
		h.Logger.Error("CancelRequest: service error", "error", err, "request_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CancelRequest: request cancelled", "request_id", id, "user_id", actor.ID)
	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("SubmitReport: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var dto SubmitReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitReport: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Service.SubmitReport(actor, id, &dto)
	if err != nil {
		h.Logger.Error("SubmitReport: service error", "error", err, "request_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SubmitReport: report submitted", "request_id", id, "report_id", report.ID, "user_id", actor.ID)
	h.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ListReports: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	reports, err := h.Service.ListReports(actor, id)
	if err != nil {
		h.Logger.Error("ListReports: service error", "error", err, "request_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

func (h *Handler) requestID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	return strconv.ParseInt(idStr, 10, 64)
}
