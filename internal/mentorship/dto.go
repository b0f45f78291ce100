package mentorship

import "github.com/ldworks/trainee-management/internal"

// AssignMentorDTO is the payload for assigning a mentor to an approved
// request. RequestVersion is the internship request version the caller
// observed.
type AssignMentorDTO struct {
	MentorID       int64 `json:"mentor_id" validate:"required"`
	RequestVersion int64 `json:"request_version" validate:"required,min=1"`
}

func (dto *AssignMentorDTO) Validate() error {
	if dto.MentorID <= 0 {
		return internal.NewValidationFieldError("mentor_id", "mentor is required", internal.ErrCodeValidationFailed)
	}
	if dto.RequestVersion < 1 {
		return internal.NewValidationFieldError("request_version", "request version is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ReleaseMentorDTO is the payload for removing the active assignment so a
// different mentor can be picked.
type ReleaseMentorDTO struct {
	RequestVersion int64 `json:"request_version" validate:"required,min=1"`
}

func (dto *ReleaseMentorDTO) Validate() error {
	if dto.RequestVersion < 1 {
		return internal.NewValidationFieldError("request_version", "request version is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
