package user

import (
	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/authz"
)

// UpdateUserDTO carries the admin-editable account fields. Nil means leave
// the field alone.
type UpdateUserDTO struct {
	Role           *string `json:"role,omitempty"`
	DepartmentID   *int64  `json:"department_id,omitempty"`
	MentorCapacity *int    `json:"mentor_capacity,omitempty"`
}

func (dto *UpdateUserDTO) Validate() error {
	if dto.Role == nil && dto.DepartmentID == nil && dto.MentorCapacity == nil {
		return internal.NewValidationError("nothing to update", internal.ErrCodeValidationFailed)
	}
	if dto.Role != nil && !authz.IsKnownRole(*dto.Role) {
		return internal.NewValidationFieldError("role", "unknown role", internal.ErrCodeValidationFailed)
	}
	if dto.DepartmentID != nil && *dto.DepartmentID <= 0 {
		return internal.NewValidationFieldError("department_id", "invalid department", internal.ErrCodeValidationFailed)
	}
	if dto.MentorCapacity != nil && *dto.MentorCapacity < 0 {
		return internal.NewValidationFieldError("mentor_capacity", "mentor capacity cannot be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ListFilter narrows user listings.
type ListFilter struct {
	Role         string
	DepartmentID *int64
	ActiveOnly   bool
	Limit        int
	Offset       int
}
