package accessrequest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/core/events"
)

// NewUser carries everything the repository needs to create the account that
// an approval produces.
type NewUser struct {
	EmployeeID   string
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Role         string
	DepartmentID *int64
	MentorCap    int
}

// Repository defines the data access methods for access requests.
type Repository interface {
	Create(req *AccessRequest) error
	GetByID(id int64) (*AccessRequest, error)
	List(filter ListFilter) ([]*AccessRequest, error)
	HasOpenRequestForEmail(email string) (bool, error)
	// Approve flips the pending request and creates the user in one
	// transaction. Either both happen or neither does.
	Approve(id, reviewerID int64, comment string, newUser *NewUser, at time.Time) (*AccessRequest, error)
	Reject(id, reviewerID int64, comment string, at time.Time) (*AccessRequest, error)
}

// Service handles access request business logic.
type Service struct {
	repo       Repository
	bus        *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bus:        bus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Submit records an unauthenticated access request. Duplicate open requests
// for the same email are refused so reviewers see one row per applicant.
func (s *Service) Submit(dto *SubmitAccessRequestDTO) (*AccessRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("access request validation failed", "error", err, "email", dto.Email)
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))

	open, err := s.repo.HasOpenRequestForEmail(email)
	if err != nil {
		s.logger.Error("failed to check open requests", "error", err, "email", email)
		return nil, internal.NewInternalError("failed to check existing requests", err)
	}
	if open {
		return nil, internal.NewConflictError("an access request for this email is already pending", internal.ErrCodeDuplicateEmployee)
	}

	req := &AccessRequest{
		EmployeeID:    strings.TrimSpace(dto.EmployeeID),
		Name:          strings.TrimSpace(dto.Name),
		Email:         email,
		Phone:         dto.Phone,
		RequestedRole: dto.RequestedRole,
		DepartmentID:  dto.DepartmentID,
		Purpose:       dto.Purpose,
		Status:        StatusPending,
		SubmittedAt:   time.Now(),
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create access request", "error", err, "email", email)
		return nil, internal.NewInternalError("failed to create access request", err)
	}

	s.logger.Info("access request submitted",
		"access_request_id", req.ID,
		"email", email,
		"requested_role", req.RequestedRole)

	return req, nil
}

// GetByID retrieves an access request for a reviewer.
func (s *Service) GetByID(actor *auth.Actor, id int64) (*AccessRequest, error) {
	if !actor.CanPerform(authz.ActionAccessRequestsList) {
		return nil, internal.NewForbiddenError("you are not allowed to view access requests", internal.ErrCodeForbiddenAction)
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("access request not found", internal.ErrCodeAccessRequestNotFound)
		}
		s.logger.Error("failed to get access request", "error", err, "access_request_id", id)
		return nil, internal.NewInternalError("failed to get access request", err)
	}
	return req, nil
}

// List returns access requests for the review queue.
func (s *Service) List(actor *auth.Actor, filter ListFilter) ([]*AccessRequest, error) {
	if !actor.CanPerform(authz.ActionAccessRequestsList) {
		return nil, internal.NewForbiddenError("you are not allowed to list access requests", internal.ErrCodeForbiddenAction)
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	requests, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list access requests", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list access requests", err)
	}
	return requests, nil
}

// Review decides a pending request. Approval creates the user account in the
// same transaction as the status flip; a rejection only records the decision
// and the mandatory comment.
func (s *Service) Review(ctx context.Context, actor *auth.Actor, id int64, dto *ReviewAccessRequestDTO) (*AccessRequest, error) {
	if !actor.CanPerform(authz.ActionAccessRequestsReview) {
		s.logger.Warn("access request review denied", "access_request_id", id, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("you are not allowed to review access requests", internal.ErrCodeForbiddenAction)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("access request not found", internal.ErrCodeAccessRequestNotFound)
		}
		s.logger.Error("failed to get access request for review", "error", err, "access_request_id", id)
		return nil, internal.NewInternalError("failed to get access request", err)
	}
	if req.Status != StatusPending {
		return nil, internal.NewConflictError("access request has already been decided", internal.ErrCodeStaleState)
	}

	now := time.Now()

	if dto.Decision == StatusRejected {
		decided, err := s.repo.Reject(id, actor.ID, dto.Comment, now)
		if err != nil {
			return nil, s.mapDecisionError(err, id)
		}

		s.logger.Info("access request rejected", "access_request_id", id, "reviewer_id", actor.ID)

		if s.bus != nil {
			event := events.NewAccessRequestRejectedEvent(id, req.Email, req.Name, dto.Comment)
			if err := s.bus.Publish(ctx, event); err != nil {
				s.logger.Error("failed to publish rejection event", "error", err, "access_request_id", id)
			}
		}
		return decided, nil
	}

	tempPassword := uuid.New().String()
	passwordHash, err := auth.HashPassword(tempPassword, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash temporary password", "error", err, "access_request_id", id)
		return nil, internal.NewInternalError("failed to prepare user account", err)
	}

	mentorCap := 0
	if req.RequestedRole == authz.RoleMentor {
		mentorCap = dto.MentorCapacity
		if mentorCap == 0 {
			mentorCap = 3
		}
	}

	newUser := &NewUser{
		EmployeeID:   req.EmployeeID,
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         req.RequestedRole,
		DepartmentID: req.DepartmentID,
		MentorCap:    mentorCap,
	}

	decided, err := s.repo.Approve(id, actor.ID, dto.Comment, newUser, now)
	if err != nil {
		return nil, s.mapDecisionError(err, id)
	}

	s.logger.Info("access request approved",
		"access_request_id", id,
		"reviewer_id", actor.ID,
		"created_user_id", decided.CreatedUserID,
		"role", req.RequestedRole)

	if s.bus != nil && decided.CreatedUserID != nil {
		event := events.NewAccessRequestApprovedEvent(id, *decided.CreatedUserID, req.Email, req.Name, req.RequestedRole, tempPassword)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish approval event", "error", err, "access_request_id", id)
		}
	}

	return decided, nil
}

func (s *Service) mapDecisionError(err error, id int64) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return internal.NewNotFoundError("access request not found", internal.ErrCodeAccessRequestNotFound)
	case errors.Is(err, ErrAlreadyDecided):
		return internal.NewConflictError("access request has already been decided", internal.ErrCodeStaleState)
	case errors.Is(err, ErrEmailTaken):
		return internal.NewConflictError("a user with this email already exists", internal.ErrCodeDuplicateEmployee)
	default:
		s.logger.Error("access request decision failed", "error", err, "access_request_id", id)
		return internal.NewInternalError("failed to decide access request", err)
	}
}
