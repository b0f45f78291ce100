package internship

import (
	"errors"
	"time"

	"github.com/ldworks/trainee-management/internal/authz"
	internshipDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/internship"
)

// Request statuses. The happy path is strictly forward; rejected and
// cancelled are side terminals.
const (
	StatusSubmitted      = "submitted"
	StatusUnderReview    = "under_review"
	StatusApproved       = "approved"
	StatusMentorAssigned = "mentor_assigned"
	StatusInProgress     = "in_progress"
	StatusCompleted      = "completed"
	StatusRejected       = "rejected"
	StatusCancelled      = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Repository-level sentinels. The service maps these to typed API errors.
var (
	ErrNotFound   = errors.New("internship request not found")
	ErrStaleState = errors.New("internship request was modified concurrently")
)

// Request is the domain view of an internship request.
type Request struct {
	ID               int64      `json:"id"`
	TraineeName      string     `json:"trainee_name"`
	TraineeEmail     string     `json:"trainee_email"`
	TraineePhone     string     `json:"trainee_phone,omitempty"`
	Institution      string     `json:"institution,omitempty"`
	Course           string     `json:"course,omitempty"`
	DurationWeeks    int        `json:"duration_weeks"`
	DepartmentID     int64      `json:"department_id"`
	Description      string     `json:"description,omitempty"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	Version          int64      `json:"version"`
	SubmittedBy      int64      `json:"submitted_by"`
	AssignedMentorID *int64     `json:"assigned_mentor_id,omitempty"`
	RequiredReports  int        `json:"required_reports"`
	ReviewComment    string     `json:"review_comment,omitempty"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type transitionKey struct {
	from string
	to   string
}

// transitions is the role-gated transition table. Cancellation is handled
// separately because it depends on the submitter identity, not only the role.
var transitions = map[transitionKey][]string{
	{StatusSubmitted, StatusUnderReview}:     {authz.RoleLDCoordinator, authz.RoleLDHoD, authz.RoleAdmin},
	{StatusSubmitted, StatusRejected}:        {authz.RoleLDCoordinator, authz.RoleLDHoD, authz.RoleAdmin},
	{StatusUnderReview, StatusRejected}:      {authz.RoleLDCoordinator, authz.RoleLDHoD, authz.RoleAdmin},
	{StatusUnderReview, StatusApproved}:      {authz.RoleLDHoD, authz.RoleAdmin},
	{StatusApproved, StatusMentorAssigned}:   {authz.RoleDepartmentHoD, authz.RoleAdmin},
	{StatusMentorAssigned, StatusInProgress}: {authz.RoleMentor, authz.RoleDepartmentHoD, authz.RoleAdmin},
	{StatusInProgress, StatusCompleted}:      {authz.RoleLDHoD, authz.RoleAdmin},
}

// IsTerminal reports whether no transition may ever leave the status.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsValidStatus reports whether the status is one of the defined states.
func IsValidStatus(status string) bool {
	switch status {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusMentorAssigned,
		StatusInProgress, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// CanTransition consults the transition table. It answers only the role gate;
// preconditions (comments, acknowledgement, reports) are checked by the
// service. Unknown states and roles fail closed.
func CanTransition(from, to, actorRole string) bool {
	roles, ok := transitions[transitionKey{from: from, to: to}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == actorRole {
			return true
		}
	}
	return false
}

// CanCancel implements the side terminal: any non-terminal state, by the
// original submitter or an admin.
func CanCancel(req *Request, actorID int64, actorRole string) bool {
	if IsTerminal(req.Status) {
		return false
	}
	return actorRole == authz.RoleAdmin || req.SubmittedBy == actorID
}

// RequiresComment reports whether the transition must carry a reviewer comment.
func RequiresComment(to string) bool {
	return to == StatusRejected
}

// Report is a trainee progress report counted against the closure criteria.
type Report struct {
	ID          int64     `json:"id"`
	RequestID   int64     `json:"request_id"`
	SubmittedBy int64     `json:"submitted_by"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func ToDataModel(r *Request) *internshipDatamodel.InternshipRequest {
	return &internshipDatamodel.InternshipRequest{
		ID:               r.ID,
		TraineeName:      r.TraineeName,
		TraineeEmail:     r.TraineeEmail,
		TraineePhone:     r.TraineePhone,
		Institution:      r.Institution,
		Course:           r.Course,
		DurationWeeks:    r.DurationWeeks,
		DepartmentID:     r.DepartmentID,
		Description:      r.Description,
		Priority:         r.Priority,
		Status:           r.Status,
		Version:          r.Version,
		SubmittedBy:      r.SubmittedBy,
		AssignedMentorID: r.AssignedMentorID,
		RequiredReports:  r.RequiredReports,
		ReviewComment:    r.ReviewComment,
		SubmittedAt:      r.SubmittedAt,
		ReviewedAt:       r.ReviewedAt,
		ApprovedAt:       r.ApprovedAt,
		StartedAt:        r.StartedAt,
		ClosedAt:         r.ClosedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func FromDataModel(m *internshipDatamodel.InternshipRequest) *Request {
	return &Request{
		ID:               m.ID,
		TraineeName:      m.TraineeName,
		TraineeEmail:     m.TraineeEmail,
		TraineePhone:     m.TraineePhone,
		Institution:      m.Institution,
		Course:           m.Course,
		DurationWeeks:    m.DurationWeeks,
		DepartmentID:     m.DepartmentID,
		Description:      m.Description,
		Priority:         m.Priority,
		Status:           m.Status,
		Version:          m.Version,
		SubmittedBy:      m.SubmittedBy,
		AssignedMentorID: m.AssignedMentorID,
		RequiredReports:  m.RequiredReports,
		ReviewComment:    m.ReviewComment,
		SubmittedAt:      m.SubmittedAt,
		ReviewedAt:       m.ReviewedAt,
		ApprovedAt:       m.ApprovedAt,
		StartedAt:        m.StartedAt,
		ClosedAt:         m.ClosedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*internshipDatamodel.InternshipRequest) []*Request {
	result := make([]*Request, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}

func ReportFromDataModel(m *internshipDatamodel.ProgressReport) *Report {
	return &Report{
		ID:          m.ID,
		RequestID:   m.RequestID,
		SubmittedBy: m.SubmittedBy,
		Title:       m.Title,
		Body:        m.Body,
		SubmittedAt: m.SubmittedAt,
	}
}
