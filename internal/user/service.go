package user

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
)

// Repository defines the data access methods for user accounts.
type Repository interface {
	GetByID(userID int64) (*User, error)
	List(filter ListFilter) ([]*User, error)
	Update(userID int64, updates map[string]interface{}) error
	SetActive(userID int64, active bool, at time.Time) error
}

// Service handles account management. Accounts are never hard-deleted;
// deactivation keeps the audit trail intact.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetProfile returns the caller's own account together with the role-derived
// permissions, navigation and dashboard variant.
func (s *Service) GetProfile(actor *auth.Actor) (*Profile, error) {
	u, err := s.repo.GetByID(actor.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		s.logger.Error("failed to load profile", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to load profile", err)
	}

	return &Profile{
		User:             u,
		Permissions:      authz.PermissionsFor(u.Role),
		Navigation:       authz.NavigationFor(u.Role),
		DashboardVariant: authz.DashboardVariantFor(u.Role),
	}, nil
}

// GetByID retrieves an account for a caller allowed to see other users.
func (s *Service) GetByID(actor *auth.Actor, userID int64) (*User, error) {
	if userID != actor.ID && !actor.CanPerform(authz.ActionUsersViewAll) {
		return nil, internal.NewForbiddenError("you are not allowed to view other users", internal.ErrCodeForbiddenAction)
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	return u, nil
}

// List returns accounts matching the filter.
func (s *Service) List(actor *auth.Actor, filter ListFilter) ([]*User, error) {
	if !actor.CanPerform(authz.ActionUsersViewAll) {
		return nil, internal.NewForbiddenError("you are not allowed to list users", internal.ErrCodeForbiddenAction)
	}
	if filter.Role != "" && !authz.IsKnownRole(filter.Role) {
		return nil, internal.NewValidationFieldError("role", "unknown role", internal.ErrCodeValidationFailed)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}

// Update changes role, department or mentor capacity of an account.
func (s *Service) Update(actor *auth.Actor, userID int64, dto *UpdateUserDTO) (*User, error) {
	if !actor.CanPerform(authz.ActionUsersManage) {
		s.logger.Warn("user update denied", "target_user_id", userID, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("you are not allowed to manage users", internal.ErrCodeForbiddenAction)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, internal.NewInternalError("failed to get user", err)
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if dto.Role != nil {
		updates["role"] = *dto.Role
	}
	if dto.DepartmentID != nil {
		updates["department_id"] = *dto.DepartmentID
	}
	if dto.MentorCapacity != nil {
		updates["mentor_capacity"] = *dto.MentorCapacity
	}

	if err := s.repo.Update(userID, updates); err != nil {
		s.logger.Error("failed to update user", "error", err, "target_user_id", userID)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.logger.Info("user updated", "target_user_id", userID, "updated_by", actor.ID)
	return s.repo.GetByID(userID)
}

// Deactivate disables an account without deleting it.
func (s *Service) Deactivate(actor *auth.Actor, userID int64) error {
	if !actor.CanPerform(authz.ActionUsersManage) {
		return internal.NewForbiddenError("you are not allowed to manage users", internal.ErrCodeForbiddenAction)
	}
	if userID == actor.ID {
		return internal.NewValidationError("you cannot deactivate your own account", internal.ErrCodeValidationFailed)
	}

	if err := s.repo.SetActive(userID, false, time.Now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		s.logger.Error("failed to deactivate user", "error", err, "target_user_id", userID)
		return internal.NewInternalError("failed to deactivate user", err)
	}

	s.logger.Info("user deactivated", "target_user_id", userID, "deactivated_by", actor.ID)
	return nil
}

// Reactivate re-enables a previously deactivated account.
func (s *Service) Reactivate(actor *auth.Actor, userID int64) error {
	if !actor.CanPerform(authz.ActionUsersManage) {
		return internal.NewForbiddenError("you are not allowed to manage users", internal.ErrCodeForbiddenAction)
	}

	if err := s.repo.SetActive(userID, true, time.Now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		s.logger.Error("failed to reactivate user", "error", err, "target_user_id", userID)
		return internal.NewInternalError("failed to reactivate user", err)
	}

	s.logger.Info("user reactivated", "target_user_id", userID, "reactivated_by", actor.ID)
	return nil
}
