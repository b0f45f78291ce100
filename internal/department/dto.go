package department

import (
	"strings"

	"github.com/ldworks/trainee-management/internal"
)

type CreateDepartmentDTO struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

func (dto *CreateDepartmentDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewValidationFieldError("name", "department name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.Code) == "" {
		return internal.NewValidationFieldError("code", "department code is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}
