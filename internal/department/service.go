package department

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	departmentDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/department"
)

type RepositoryAPI interface {
	GetAll(activeOnly bool) ([]*departmentDatamodel.Department, error)
	GetByID(id int64) (*departmentDatamodel.Department, error)
	GetByCode(code string) (*departmentDatamodel.Department, error)
	Create(dept *departmentDatamodel.Department) error
	SetActive(id int64, active bool) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetAll lists active departments, for pickers on access requests and
// internship submissions.
func (s *Service) GetAll() ([]*Department, error) {
	models, err := s.repo.GetAll(true)
	if err != nil {
		s.logger.Error("failed to get departments", "error", err)
		return nil, internal.NewInternalError("failed to get departments", err)
	}

	departments := make([]*Department, len(models))
	for i, m := range models {
		departments[i] = FromDataModel(m)
	}
	return departments, nil
}

func (s *Service) GetByID(id int64) (*Department, error) {
	model, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
		}
		s.logger.Error("failed to get department", "error", err, "department_id", id)
		return nil, internal.NewInternalError("failed to get department", err)
	}
	return FromDataModel(model), nil
}

// Exists reports whether an active department with the ID exists. Used by
// other services to validate references.
func (s *Service) Exists(id int64) bool {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return false
	}
	return model.IsActive
}

// Create adds a department. Admin only.
func (s *Service) Create(actor *auth.Actor, dto *CreateDepartmentDTO) (*Department, error) {
	if !actor.CanPerform(authz.ActionUsersManage) {
		return nil, internal.NewForbiddenError("you are not allowed to manage departments", internal.ErrCodeForbiddenAction)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(dto.Code))
	existing, err := s.repo.GetByCode(code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to check department code", "error", err, "code", code)
		return nil, internal.NewInternalError("failed to check department code", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("department code already in use", internal.ErrCodeValidationFailed)
	}

	dept := NewDepartment(strings.TrimSpace(dto.Name), code)
	model := ToDataModel(dept)
	if err := s.repo.Create(model); err != nil {
		s.logger.Error("failed to create department", "error", err, "code", code)
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", model.ID, "code", code, "created_by", actor.ID)
	return FromDataModel(model), nil
}

// Deactivate hides a department from pickers without deleting it.
func (s *Service) Deactivate(actor *auth.Actor, id int64) error {
	if !actor.CanPerform(authz.ActionUsersManage) {
		return internal.NewForbiddenError("you are not allowed to manage departments", internal.ErrCodeForbiddenAction)
	}

	if err := s.repo.SetActive(id, false); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
		}
		s.logger.Error("failed to deactivate department", "error", err, "department_id", id)
		return internal.NewInternalError("failed to deactivate department", err)
	}

	s.logger.Info("department deactivated", "department_id", id, "deactivated_by", actor.ID)
	return nil
}
