package mentorship

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
	Assign(ctx context.Context, actor *auth.Actor, requestID int64, dto *AssignMentorDTO) (*Assignment, error)
	Release(ctx context.Context, actor *auth.Actor, requestID int64, dto *ReleaseMentorDTO) error
	Acknowledge(actor *auth.Actor, requestID int64) (*Assignment, error)
	ListForMentor(actor *auth.Actor) ([]*Assignment, error)
	MentorLoads(actor *auth.Actor, departmentID int64) ([]*MentorLoad, error)
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

func (h *Handler) AssignMentor(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("AssignMentor: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var dto AssignMentorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AssignMentor: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assignment, err := h.Service.Assign(r.Context(), actor, requestID, &dto)
	if err != nil {
		h.Logger.Error("AssignMentor: service error",
			"error", err,
			"request_id", requestID,
			"mentor_id", dto.MentorID,
			"user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("AssignMentor: mentor assigned",
		"request_id", requestID,
		"mentor_id", dto.MentorID,
		"user_id", actor.ID)

	h.WriteJSON(w, http.StatusCreated, assignment)
}

func (h *Handler) ReleaseMentor(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ReleaseMentor: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var dto ReleaseMentorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReleaseMentor: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Release(r.Context(), actor, requestID, &dto); err != nil {
		h.Logger.Error("ReleaseMentor: service error",
			"error", err,
			"request_id", requestID,
			"user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ReleaseMentor: assignment released", "request_id", requestID, "user_id", actor.ID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

func (h *Handler) AcknowledgeAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("AcknowledgeAssignment: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	assignment, err := h.Service.Acknowledge(actor, requestID)
	if err != nil {
		h.Logger.Error("AcknowledgeAssignment: service error", "error", err, "request_id", requestID, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("AcknowledgeAssignment: assignment acknowledged", "request_id", requestID, "user_id", actor.ID)
	h.WriteJSON(w, http.StatusOK, assignment)
}

func (h *Handler) ListMyAssignments(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ListMyAssignments: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	assignments, err := h.Service.ListForMentor(actor)
	if err != nil {
		h.Logger.Error("ListMyAssignments: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"assignments": assignments})
}

func (h *Handler) GetMentorLoads(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("GetMentorLoads: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var departmentID int64
	if deptStr := r.URL.Query().Get("department_id"); deptStr != "" {
		d, err := strconv.ParseInt(deptStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid department ID")
			return
		}
		departmentID = d
	}

	loads, err := h.Service.MentorLoads(actor, departmentID)
	if err != nil {
		h.Logger.Error("GetMentorLoads: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"mentors": loads})
}

func (h *Handler) requestID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	return strconv.ParseInt(idStr, 10, 64)
}
