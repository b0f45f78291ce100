package mentorship

import (
	"errors"
	"time"

	mentorshipDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/mentorship"
)

// Repository-level sentinels.
var (
	ErrAssignmentNotFound   = errors.New("mentor assignment not found")
	ErrMentorNotFound       = errors.New("mentor not found")
	ErrCapacityExceeded     = errors.New("mentor capacity exceeded")
	ErrRequestConflict      = errors.New("internship request changed concurrently")
	ErrRequestNotAssignable = errors.New("internship request is not awaiting assignment")
	ErrRequestNotReleasable = errors.New("internship request has no releasable assignment")
)

// Assignment links a mentor to an internship request. A request has at most
// one active assignment at a time.
type Assignment struct {
	ID             int64      `json:"id"`
	RequestID      int64      `json:"request_id"`
	MentorID       int64      `json:"mentor_id"`
	AssignedBy     int64      `json:"assigned_by"`
	IsActive       bool       `json:"is_active"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MentorLoad is a mentor together with the active assignment count, used for
// assignment pickers and the department dashboard.
type MentorLoad struct {
	MentorID    int64  `json:"mentor_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Capacity    int    `json:"capacity"`
	ActiveCount int64  `json:"active_count"`
}

func FromDataModel(m *mentorshipDatamodel.MentorAssignment) *Assignment {
	return &Assignment{
		ID:             m.ID,
		RequestID:      m.RequestID,
		MentorID:       m.MentorID,
		AssignedBy:     m.AssignedBy,
		IsActive:       m.IsActive,
		AcknowledgedAt: m.AcknowledgedAt,
		ReleasedAt:     m.ReleasedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*mentorshipDatamodel.MentorAssignment) []*Assignment {
	result := make([]*Assignment, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
