package accessrequest

import (
	"strings"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/core/common/validation"
)

// SubmitAccessRequestDTO is the unauthenticated signup payload.
type SubmitAccessRequestDTO struct {
	EmployeeID    string `json:"employee_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone,omitempty"`
	RequestedRole string `json:"requested_role" validate:"required"`
	DepartmentID  *int64 `json:"department_id,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
}

func (dto *SubmitAccessRequestDTO) Validate() error {
	var errs []internal.ValidationError

	if strings.TrimSpace(dto.EmployeeID) == "" {
		errs = append(errs, internal.ValidationError{Field: "employee_id", Message: "employee ID is required", Code: string(internal.ErrCodeValidationFailed)})
	}
	if strings.TrimSpace(dto.Name) == "" {
		errs = append(errs, internal.ValidationError{Field: "name", Message: "name is required", Code: string(internal.ErrCodeValidationFailed)})
	}
	if !validation.IsValidEmail(dto.Email) {
		errs = append(errs, internal.ValidationError{Field: "email", Message: "a valid email is required", Code: string(internal.ErrCodeValidationFailed)})
	}
	if !authz.IsKnownRole(dto.RequestedRole) {
		errs = append(errs, internal.ValidationError{Field: "requested_role", Message: "unknown role", Code: string(internal.ErrCodeValidationFailed)})
	}
	if dto.RequestedRole == authz.RoleAdmin {
		errs = append(errs, internal.ValidationError{Field: "requested_role", Message: "admin accounts cannot be requested", Code: string(internal.ErrCodeValidationFailed)})
	}
	// Department-bound roles must name their department up front.
	if dto.RequestedRole == authz.RoleDepartmentHoD || dto.RequestedRole == authz.RoleMentor {
		if dto.DepartmentID == nil || *dto.DepartmentID <= 0 {
			errs = append(errs, internal.ValidationError{Field: "department_id", Message: "department is required for this role", Code: string(internal.ErrCodeValidationFailed)})
		}
	}

	if len(errs) > 0 {
		return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: errs})
	}
	return nil
}

// ReviewAccessRequestDTO is the reviewer's decision payload.
type ReviewAccessRequestDTO struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Comment  string `json:"comment,omitempty"`
	// MentorCapacity is honored only when approving a mentor account.
	MentorCapacity int `json:"mentor_capacity,omitempty"`
}

func (dto *ReviewAccessRequestDTO) Validate() error {
	if dto.Decision != StatusApproved && dto.Decision != StatusRejected {
		return internal.NewValidationFieldError("decision", "decision must be approved or rejected", internal.ErrCodeValidationFailed)
	}
	if dto.Decision == StatusRejected && strings.TrimSpace(dto.Comment) == "" {
		return internal.NewValidationFieldError("comment", "a comment is required when rejecting", internal.ErrCodeCommentRequired)
	}
	if dto.MentorCapacity < 0 {
		return internal.NewValidationFieldError("mentor_capacity", "mentor capacity cannot be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ListFilter narrows access request listings.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}
