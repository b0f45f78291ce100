package internship

import (
	"strings"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/core/common/validation"
)

// CreateRequestDTO is the payload for submitting a new internship request.
type CreateRequestDTO struct {
	TraineeName     string `json:"trainee_name" validate:"required"`
	TraineeEmail    string `json:"trainee_email" validate:"required,email"`
	TraineePhone    string `json:"trainee_phone,omitempty"`
	Institution     string `json:"institution,omitempty"`
	Course          string `json:"course,omitempty"`
	DurationWeeks   int    `json:"duration_weeks" validate:"required,min=1,max=52"`
	DepartmentID    int64  `json:"department_id" validate:"required"`
	Description     string `json:"description,omitempty"`
	Priority        string `json:"priority,omitempty"`
	RequiredReports int    `json:"required_reports,omitempty"`
}

func (dto *CreateRequestDTO) Validate() error {
	var errs []internal.ValidationError

	if strings.TrimSpace(dto.TraineeName) == "" {
		errs = append(errs, internal.ValidationError{Field: "trainee_name", Message: "trainee name is required", Code: string(internal.ErrCodeValidationFailed)})
	}
	if !validation.IsValidEmail(dto.TraineeEmail) {
		errs = append(errs, internal.ValidationError{Field: "trainee_email", Message: "a valid trainee email is required", Code: string(internal.ErrCodeValidationFailed)})
	}
	if dto.DurationWeeks < 1 || dto.DurationWeeks > 52 {
		errs = append(errs, internal.ValidationError{Field: "duration_weeks", Message: "duration must be between 1 and 52 weeks", Code: string(internal.ErrCodeInvalidDuration)})
	}
	if dto.DepartmentID <= 0 {
		errs = append(errs, internal.ValidationError{Field: "department_id", Message: "department is required", Code: string(internal.ErrCodeValidationFailed)})
	}
	if dto.Priority != "" && dto.Priority != PriorityLow && dto.Priority != PriorityMedium && dto.Priority != PriorityHigh {
		errs = append(errs, internal.ValidationError{Field: "priority", Message: "priority must be low, medium or high", Code: string(internal.ErrCodeInvalidPriority)})
	}
	if dto.RequiredReports < 0 {
		errs = append(errs, internal.ValidationError{Field: "required_reports", Message: "required reports cannot be negative", Code: string(internal.ErrCodeValidationFailed)})
	}

	if len(errs) > 0 {
		return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: errs})
	}
	return nil
}

// TransitionDTO is the payload for moving a request to a new status. Version
// is the last version the caller observed; a mismatch means someone else
// changed the request in the meantime.
type TransitionDTO struct {
	ToStatus string `json:"to_status" validate:"required"`
	Version  int64  `json:"version" validate:"required,min=1"`
	Comment  string `json:"comment,omitempty"`
}

func (dto *TransitionDTO) Validate() error {
	if !IsValidStatus(dto.ToStatus) {
		return internal.NewValidationFieldError("to_status", "unknown target status", internal.ErrCodeValidationFailed)
	}
	if dto.Version < 1 {
		return internal.NewValidationFieldError("version", "version is required", internal.ErrCodeValidationFailed)
	}
	if RequiresComment(dto.ToStatus) && strings.TrimSpace(dto.Comment) == "" {
		return internal.NewValidationFieldError("comment", "a comment is required when rejecting a request", internal.ErrCodeCommentRequired)
	}
	return nil
}

// CancelDTO carries the optimistic-lock version for cancellation.
type CancelDTO struct {
	Version int64  `json:"version" validate:"required,min=1"`
	Reason  string `json:"reason,omitempty"`
}

func (dto *CancelDTO) Validate() error {
	if dto.Version < 1 {
		return internal.NewValidationFieldError("version", "version is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// SubmitReportDTO is the payload for a trainee progress report.
type SubmitReportDTO struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body,omitempty"`
}

func (dto *SubmitReportDTO) Validate() error {
	if strings.TrimSpace(dto.Title) == "" {
		return internal.NewValidationFieldError("title", "report title is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ListFilter narrows request listings. Department scoping is applied by the
// service from the actor, not from client input.
type ListFilter struct {
	Status       string
	DepartmentID *int64
	SubmittedBy  *int64
	MentorID     *int64
	Limit        int
	Offset       int
}
