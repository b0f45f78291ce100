package mentorship

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/core/events"
	"github.com/ldworks/trainee-management/internal/internship"
)

// RepositoryAPI defines the data access methods for mentor assignments.
type RepositoryAPI interface {
	// AssignWithinCapacity creates the assignment and moves the request to
	// the assigned state in one transaction. The mentor's active load is
	// counted inside that transaction so the capacity ceiling holds under
	// concurrent assignment attempts.
	AssignWithinCapacity(requestID, expectedVersion, mentorID, assignedBy, departmentID int64) (*Assignment, error)
	// ReleaseAndRevert deactivates the active assignment and moves the
	// request back to the assignable state, under the version gate.
	ReleaseAndRevert(requestID, expectedVersion int64, at time.Time) error
	GetActiveByRequestID(requestID int64) (*Assignment, error)
	Acknowledge(requestID, mentorID int64, at time.Time) error
	ReleaseActive(requestID int64, at time.Time) error
	ListForMentor(mentorID int64) ([]*Assignment, error)
	MentorLoads(departmentID int64) ([]*MentorLoad, error)
	GetMentorEmail(mentorID int64) (string, error)
}

// RequestGetter is the slice of the internship service the assignment flow
// needs.
type RequestGetter interface {
	GetByID(id int64) (*internship.Request, error)
}

// Service handles mentor assignment business logic.
type Service struct {
	repo     RepositoryAPI
	requests RequestGetter
	bus      *events.EventBus
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, requests RequestGetter, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		requests: requests,
		bus:      bus,
		logger:   logger,
	}
}

// Assign gives an approved request a mentor. The department head may only
// assign within their own department, and the mentor must have spare
// capacity at the moment of assignment.
func (s *Service) Assign(ctx context.Context, actor *auth.Actor, requestID int64, dto *AssignMentorDTO) (*Assignment, error) {
	if !actor.CanPerform(authz.ActionMentorsAssign) {
		s.logger.Warn("mentor assignment denied", "request_id", requestID, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("you are not allowed to assign mentors", internal.ErrCodeForbiddenAction)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.requests.GetByID(requestID)
	if err != nil {
		if errors.Is(err, internship.ErrNotFound) {
			return nil, internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		}
		s.logger.Error("failed to load request for assignment", "error", err, "request_id", requestID)
		return nil, internal.NewInternalError("failed to load internship request", err)
	}

	if req.Status != internship.StatusApproved {
		return nil, internal.NewInvalidTransitionError(req.Status, internship.StatusMentorAssigned, actor.Role)
	}
	if actor.Scope() == authz.ScopeDepartment {
		if actor.DepartmentID == nil || *actor.DepartmentID != req.DepartmentID {
			s.logger.Warn("cross-department assignment denied",
				"request_id", requestID,
				"request_department", req.DepartmentID,
				"user_id", actor.ID)
			return nil, internal.NewForbiddenError("you may only assign mentors within your department", internal.ErrCodeForbiddenAction)
		}
	}

	assignment, err := s.repo.AssignWithinCapacity(requestID, dto.RequestVersion, dto.MentorID, actor.ID, req.DepartmentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMentorNotFound):
			return nil, internal.NewNotFoundError("mentor not found in this department", internal.ErrCodeMentorNotFound)
		case errors.Is(err, ErrCapacityExceeded):
			s.logger.Warn("mentor at capacity", "request_id", requestID, "mentor_id", dto.MentorID)
			return nil, internal.NewCapacityExceededError("the mentor has no spare capacity")
		case errors.Is(err, ErrRequestNotAssignable):
			return nil, internal.NewInvalidTransitionError(req.Status, internship.StatusMentorAssigned, actor.Role)
		case errors.Is(err, ErrRequestConflict):
			return nil, internal.NewStaleStateError("the request was modified by someone else, reload and retry")
		default:
			s.logger.Error("mentor assignment failed", "error", err, "request_id", requestID, "mentor_id", dto.MentorID)
			return nil, internal.NewInternalError("failed to assign mentor", err)
		}
	}

	s.logger.Info("mentor assigned",
		"request_id", requestID,
		"mentor_id", dto.MentorID,
		"assigned_by", actor.ID)

	if s.bus != nil {
		mentorEmail, cerr := s.repo.GetMentorEmail(dto.MentorID)
		if cerr != nil {
			s.logger.Error("failed to load mentor email for event", "error", cerr, "mentor_id", dto.MentorID)
		}
		event := events.NewMentorAssignedEvent(requestID, dto.MentorID, mentorEmail, actor.ID, req.TraineeName)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish mentor assigned event", "error", err, "request_id", requestID)
		}
	}

	return assignment, nil
}

// Release removes the active mentor assignment and moves the request back to
// the assignable state, so a different mentor can be picked. Only possible
// before the internship starts.
func (s *Service) Release(ctx context.Context, actor *auth.Actor, requestID int64, dto *ReleaseMentorDTO) error {
	if !actor.CanPerform(authz.ActionMentorsAssign) {
		s.logger.Warn("mentor release denied", "request_id", requestID, "user_id", actor.ID, "role", actor.Role)
		return internal.NewForbiddenError("you are not allowed to release mentor assignments", internal.ErrCodeForbiddenAction)
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	req, err := s.requests.GetByID(requestID)
	if err != nil {
		if errors.Is(err, internship.ErrNotFound) {
			return internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		}
		s.logger.Error("failed to load request for release", "error", err, "request_id", requestID)
		return internal.NewInternalError("failed to load internship request", err)
	}

	if actor.Scope() == authz.ScopeDepartment {
		if actor.DepartmentID == nil || *actor.DepartmentID != req.DepartmentID {
			s.logger.Warn("cross-department release denied",
				"request_id", requestID,
				"request_department", req.DepartmentID,
				"user_id", actor.ID)
			return internal.NewForbiddenError("you may only release assignments within your department", internal.ErrCodeForbiddenAction)
		}
	}

	if err := s.repo.ReleaseAndRevert(requestID, dto.RequestVersion, time.Now()); err != nil {
		switch {
		case errors.Is(err, internship.ErrNotFound):
			return internal.NewNotFoundError("internship request not found", internal.ErrCodeInternshipNotFound)
		case errors.Is(err, ErrRequestNotReleasable):
			return internal.NewInvalidTransitionError(req.Status, internship.StatusApproved, actor.Role)
		case errors.Is(err, ErrRequestConflict):
			return internal.NewStaleStateError("the request was modified by someone else, reload and retry")
		case errors.Is(err, ErrAssignmentNotFound):
			return internal.NewNotFoundError("no active assignment for this request", internal.ErrCodeMentorNotFound)
		default:
			s.logger.Error("mentor release failed", "error", err, "request_id", requestID)
			return internal.NewInternalError("failed to release mentor assignment", err)
		}
	}

	s.logger.Info("mentor assignment released",
		"request_id", requestID,
		"released_by", actor.ID)
	return nil
}

// Acknowledge records that the mentor has accepted the assignment. The
// internship cannot start until this has happened.
func (s *Service) Acknowledge(actor *auth.Actor, requestID int64) (*Assignment, error) {
	if !actor.CanPerform(authz.ActionMentorsAcknowledge) {
		return nil, internal.NewForbiddenError("you are not allowed to acknowledge assignments", internal.ErrCodeForbiddenAction)
	}

	assignment, err := s.repo.GetActiveByRequestID(requestID)
	if err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return nil, internal.NewNotFoundError("no active assignment for this request", internal.ErrCodeMentorNotFound)
		}
		s.logger.Error("failed to load assignment", "error", err, "request_id", requestID)
		return nil, internal.NewInternalError("failed to load assignment", err)
	}

	if assignment.MentorID != actor.ID && !actor.IsAdmin() {
		s.logger.Warn("acknowledgement denied", "request_id", requestID, "user_id", actor.ID, "mentor_id", assignment.MentorID)
		return nil, internal.NewForbiddenError("only the assigned mentor may acknowledge", internal.ErrCodeForbiddenAction)
	}
	if assignment.AcknowledgedAt != nil {
		return assignment, nil
	}

	now := time.Now()
	if err := s.repo.Acknowledge(requestID, assignment.MentorID, now); err != nil {
		s.logger.Error("failed to acknowledge assignment", "error", err, "request_id", requestID)
		return nil, internal.NewInternalError("failed to acknowledge assignment", err)
	}

	s.logger.Info("assignment acknowledged", "request_id", requestID, "mentor_id", assignment.MentorID)

	assignment.AcknowledgedAt = &now
	return assignment, nil
}

// HasAcknowledgedAssignment reports whether the active assignment for the
// request has been acknowledged.
func (s *Service) HasAcknowledgedAssignment(requestID int64) (bool, error) {
	assignment, err := s.repo.GetActiveByRequestID(requestID)
	if err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return false, nil
		}
		return false, err
	}
	return assignment.AcknowledgedAt != nil, nil
}

// ListForMentor returns the caller's own assignments.
func (s *Service) ListForMentor(actor *auth.Actor) ([]*Assignment, error) {
	assignments, err := s.repo.ListForMentor(actor.ID)
	if err != nil {
		s.logger.Error("failed to list assignments", "error", err, "mentor_id", actor.ID)
		return nil, internal.NewInternalError("failed to list assignments", err)
	}
	return assignments, nil
}

// MentorLoads returns the mentors of a department with their current active
// load, for assignment decisions.
func (s *Service) MentorLoads(actor *auth.Actor, departmentID int64) ([]*MentorLoad, error) {
	if !actor.CanPerform(authz.ActionMentorsAssign) {
		return nil, internal.NewForbiddenError("you are not allowed to view mentor loads", internal.ErrCodeForbiddenAction)
	}
	if actor.Scope() == authz.ScopeDepartment {
		if actor.DepartmentID == nil {
			return []*MentorLoad{}, nil
		}
		departmentID = *actor.DepartmentID
	}
	if departmentID <= 0 {
		return nil, internal.NewValidationFieldError("department_id", "department is required", internal.ErrCodeValidationFailed)
	}

	loads, err := s.repo.MentorLoads(departmentID)
	if err != nil {
		s.logger.Error("failed to list mentor loads", "error", err, "department_id", departmentID)
		return nil, internal.NewInternalError("failed to list mentor loads", err)
	}
	return loads, nil
}

// HandleRequestClosed releases the active assignment when a request reaches a
// terminal state. Subscribed to the transition event stream at startup.
func (s *Service) HandleRequestClosed(ctx context.Context, event events.Event) error {
	transitioned, ok := event.(*events.InternshipTransitionedEvent)
	if !ok {
		return nil
	}
	if !internship.IsTerminal(transitioned.ToStatus) {
		return nil
	}

	if err := s.repo.ReleaseActive(transitioned.RequestID, time.Now()); err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return nil
		}
		s.logger.Error("failed to release assignment", "error", err, "request_id", transitioned.RequestID)
		return err
	}

	s.logger.Info("assignment released", "request_id", transitioned.RequestID, "to_status", transitioned.ToStatus)
	return nil
}
