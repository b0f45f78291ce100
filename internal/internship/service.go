package internship

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/core/events"
)

// Repository defines the data access methods for internship requests.
type Repository interface {
	Create(req *Request) error
	GetByID(id int64) (*Request, error)
	List(filter ListFilter) ([]*Request, error)
	// UpdateStatus applies the updates only when the stored version still
	// equals expectedVersion, incrementing it in the same statement.
	UpdateStatus(id, expectedVersion int64, updates map[string]interface{}) error
	CreateReport(report *Report) error
	CountReports(requestID int64) (int64, error)
	ListReports(requestID int64) ([]*Report, error)
}

// AssignmentChecker answers whether the active mentor assignment for a
// request has been acknowledged. Implemented by the mentorship service.
type AssignmentChecker interface {
	HasAcknowledgedAssignment(requestID int64) (bool, error)
}

// Service handles internship request business logic.
type Service struct {
	repo        Repository
	assignments AssignmentChecker
	bus         *events.EventBus
	logger      *slog.Logger
}

func NewService(repo Repository, assignments AssignmentChecker, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
		bus:         bus,
		logger:      logger,
	}
}

// Submit creates a new request in the submitted state.
func (s *Service) Submit(actor *auth.Actor, dto *CreateRequestDTO) (*Request, error) {
	if !actor.CanPerform(authz.ActionInternshipsCreate) {
		s.logger.Warn("internship submit denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("you are not allowed to submit internship requests", internal.ErrCodeForbiddenAction)
	}

	if err := dto.Validate(); err != nil {
		s.logger.Error("internship validation failed", "error", err, "user_id", actor.ID)
		return nil, err
	}

	priority := dto.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	req := &Request{
		TraineeName:     dto.TraineeName,
		TraineeEmail:    dto.TraineeEmail,
		TraineePhone:    dto.TraineePhone,
		Institution:     dto.Institution,
		Course:          dto.Course,
		DurationWeeks:   dto.DurationWeeks,
		DepartmentID:    dto.DepartmentID,
		Description:     dto.Description,
		Priority:        priority,
		Status:          StatusSubmitted,
		Version:         1,
		SubmittedBy:     actor.ID,
		RequiredReports: dto.RequiredReports,
		SubmittedAt:     time.Now(),
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create internship request", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create internship request", err)
	}

	s.logger.Info("internship request submitted",
		"request_id", req.ID,
		"user_id", actor.ID,
		"department_id", req.DepartmentID)

	return req, nil
}

// GetByID retrieves a request, enforcing the caller's visibility scope.
func (s *Service) GetByID(actor *auth.Actor, id int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		}
		s.logger.Error("failed to get internship request", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to get internship request", err)
	}

	if !s.canView(actor, req) {
		s.logger.Warn("internship access denied", "request_id", id, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("you are not allowed to view this request", internal.ErrCodeForbiddenAction)
	}

	return req, nil
}

// List returns the requests visible to the caller. Scope narrowing is applied
// on top of whatever filter the handler passes in.
func (s *Service) List(actor *auth.Actor, filter ListFilter) ([]*Request, error) {
	switch actor.Scope() {
	case authz.ScopeOrganization:
		// no narrowing
	case authz.ScopeDepartment:
		if actor.DepartmentID == nil {
			return []*Request{}, nil
		}
		filter.DepartmentID = actor.DepartmentID
	case authz.ScopeAssigned:
		mentorID := actor.ID
		filter.MentorID = &mentorID
	case authz.ScopeSelf:
		submitterID := actor.ID
		filter.SubmittedBy = &submitterID
	default:
		return nil, internal.NewForbiddenError("you are not allowed to list internship requests", internal.ErrCodeForbiddenAction)
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	requests, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list internship requests", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list internship requests", err)
	}
	return requests, nil
}

// Transition moves a request to a new status. The transition table gates the
// role, the version gate catches concurrent edits, and target-specific
// preconditions are checked before anything is written.
func (s *Service) Transition(ctx context.Context, actor *auth.Actor, id int64, dto *TransitionDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.ToStatus == StatusMentorAssigned {
		return nil, internal.NewValidationFieldError("to_status", "mentor assignment must go through the assignment endpoint", internal.ErrCodeValidationFailed)
	}
	if dto.ToStatus == StatusCancelled {
		return nil, internal.NewValidationFieldError("to_status", "cancellation must go through the cancel endpoint", internal.ErrCodeValidationFailed)
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		}
		s.logger.Error("failed to get internship request for transition", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to get internship request", err)
	}

	if !CanTransition(req.Status, dto.ToStatus, actor.Role) {
		s.logger.Warn("internship transition denied",
			"request_id", id,
			"from", req.Status,
			"to", dto.ToStatus,
			"role", actor.Role)
		return nil, internal.NewInvalidTransitionError(req.Status, dto.ToStatus, actor.Role)
	}

	if err := s.checkPreconditions(req, dto.ToStatus); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     dto.ToStatus,
		"updated_at": now,
	}
	if dto.Comment != "" {
		updates["review_comment"] = dto.Comment
	}
	switch dto.ToStatus {
	case StatusUnderReview:
		updates["reviewed_at"] = now
	case StatusApproved:
		updates["approved_at"] = now
	case StatusRejected:
		updates["reviewed_at"] = now
		updates["closed_at"] = now
	case StatusInProgress:
		updates["started_at"] = now
	case StatusCompleted:
		updates["closed_at"] = now
	}

	if err := s.repo.UpdateStatus(id, dto.Version, updates); err != nil {
		switch {
		case errors.Is(err, ErrStaleState):
			s.logger.Warn("internship transition lost a concurrent race", "request_id", id, "expected_version", dto.Version)
			return nil, internal.NewStaleStateError("the request was modified by someone else, reload and retry")
		case errors.Is(err, ErrNotFound):
			return nil, internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		default:
			s.logger.Error("failed to update internship status", "error", err, "request_id", id)
			return nil, internal.NewInternalError("failed to update internship status", err)
		}
	}

	s.logger.Info("internship request transitioned",
		"request_id", id,
		"from", req.Status,
		"to", dto.ToStatus,
		"actor_id", actor.ID,
		"role", actor.Role)

	if s.bus != nil {
		event := events.NewInternshipTransitionedEvent(id, req.Status, dto.ToStatus, actor.ID, actor.Role, req.TraineeEmail)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish transition event", "error", err, "request_id", id)
		}
	}

	return s.repo.GetByID(id)
}

// Cancel moves any non-terminal request to cancelled. Only the submitter or
// an admin may do this.
func (s *Service) Cancel(ctx context.Context, actor *auth.Actor, id int64, dto *CancelDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		}
		s.logger.Error("failed to get internship request for cancel", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to get internship request", err)
	}

	if IsTerminal(req.Status) {
		return nil, internal.NewInvalidTransitionError(req.Status, StatusCancelled, actor.Role)
	}
	if !CanCancel(req, actor.ID, actor.Role) {
		s.logger.Warn("internship cancel denied", "request_id", id, "user_id", actor.ID, "submitted_by", req.SubmittedBy)
		return nil, internal.NewForbiddenError("only the submitter or an admin may cancel this request", internal.ErrCodeForbiddenAction)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     StatusCancelled,
		"closed_at":  now,
		"updated_at": now,
	}
	if dto.Reason != "" {
		updates["review_comment"] = dto.Reason
	}

	if err := s.repo.UpdateStatus(id, dto.Version, updates); err != nil {
		switch {
		case errors.Is(err, ErrStaleState):
			return nil, internal.NewStaleStateError("the request was modified by someone else, reload and retry")
		case errors.Is(err, ErrNotFound):
			return nil, internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		default:
			s.logger.Error("failed to cancel internship request", "error", err, "request_id", id)
			return nil, internal.NewInternalError("failed to cancel internship request", err)
		}
	}

	s.logger.Info("internship request cancelled", "request_id", id, "actor_id", actor.ID)

	if s.bus != nil {
		event := events.NewInternshipTransitionedEvent(id, req.Status, StatusCancelled, actor.ID, actor.Role, req.TraineeEmail)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish cancel event", "error", err, "request_id", id)
		}
	}

	return s.repo.GetByID(id)
}

// SubmitReport records a progress report against an in-progress request.
func (s *Service) SubmitReport(actor *auth.Actor, requestID int64, dto *SubmitReportDTO) (*Report, error) {
	if !actor.CanPerform(authz.ActionReportsSubmit) {
		return nil, internal.NewForbiddenError("you are not allowed to submit reports", internal.ErrCodeForbiddenAction)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(requestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		}
		return nil, internal.NewInternalError("failed to get internship request", err)
	}

	if req.SubmittedBy != actor.ID && !actor.IsAdmin() {
		return nil, internal.NewForbiddenError("you may only report on your own internship", internal.ErrCodeForbiddenAction)
	}
	if req.Status != StatusInProgress {
		return nil, internal.NewValidationError("reports can only be submitted while the internship is in progress", internal.ErrCodeValidationFailed)
	}

	report := &Report{
		RequestID:   requestID,
		SubmittedBy: actor.ID,
		Title:       dto.Title,
		Body:        dto.Body,
		SubmittedAt: time.Now(),
	}
	if err := s.repo.CreateReport(report); err != nil {
		s.logger.Error("failed to create progress report", "error", err, "request_id", requestID)
		return nil, internal.NewInternalError("failed to create progress report", err)
	}

	s.logger.Info("progress report submitted", "request_id", requestID, "report_id", report.ID, "user_id", actor.ID)
	return report, nil
}

// ListReports returns the progress reports for a request the caller may view.
func (s *Service) ListReports(actor *auth.Actor, requestID int64) ([]*Report, error) {
	if _, err := s.GetByID(actor, requestID); err != nil {
		return nil, err
	}

	reports, err := s.repo.ListReports(requestID)
	if err != nil {
		s.logger.Error("failed to list progress reports", "error", err, "request_id", requestID)
		return nil, internal.NewInternalError("failed to list progress reports", err)
	}
	return reports, nil
}

func (s *Service) checkPreconditions(req *Request, to string) error {
	switch to {
	case StatusInProgress:
		acknowledged, err := s.assignments.HasAcknowledgedAssignment(req.ID)
		if err != nil {
			s.logger.Error("failed to check mentor acknowledgement", "error", err, "request_id", req.ID)
			return internal.NewInternalError("failed to check mentor acknowledgement", err)
		}
		if !acknowledged {
			return internal.NewValidationError("the assigned mentor must acknowledge before the internship starts", internal.ErrCodeValidationFailed)
		}
	case StatusCompleted:
		if req.RequiredReports > 0 {
			count, err := s.repo.CountReports(req.ID)
			if err != nil {
				s.logger.Error("failed to count progress reports", "error", err, "request_id", req.ID)
				return internal.NewInternalError("failed to count progress reports", err)
			}
			if count < int64(req.RequiredReports) {
				return internal.NewValidationError("required progress reports are outstanding", internal.ErrCodeValidationFailed)
			}
		}
	}
	return nil
}

func (s *Service) canView(actor *auth.Actor, req *Request) bool {
	switch actor.Scope() {
	case authz.ScopeOrganization:
		return true
	case authz.ScopeDepartment:
		return actor.DepartmentID != nil && *actor.DepartmentID == req.DepartmentID
	case authz.ScopeAssigned:
		return req.AssignedMentorID != nil && *req.AssignedMentorID == actor.ID
	case authz.ScopeSelf:
		return req.SubmittedBy == actor.ID
	}
	return false
}
