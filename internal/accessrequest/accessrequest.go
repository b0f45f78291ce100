package accessrequest

import (
	"errors"
	"time"

	accessrequestDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/accessrequest"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Repository-level sentinels.
var (
	ErrNotFound       = errors.New("access request not found")
	ErrAlreadyDecided = errors.New("access request already decided")
	ErrEmailTaken     = errors.New("email already belongs to a user")
)

// AccessRequest is a self-service request for a system account. It exists
// before any user record does; approval is what creates the user.
type AccessRequest struct {
	ID            int64      `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	RequestedRole string     `json:"requested_role"`
	DepartmentID  *int64     `json:"department_id,omitempty"`
	Purpose       string     `json:"purpose,omitempty"`
	Status        string     `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewerID    *int64     `json:"reviewer_id,omitempty"`
	ReviewComment string     `json:"review_comment,omitempty"`
	CreatedUserID *int64     `json:"created_user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func FromDataModel(m *accessrequestDatamodel.AccessRequest) *AccessRequest {
	return &AccessRequest{
		ID:            m.ID,
		EmployeeID:    m.EmployeeID,
		Name:          m.Name,
		Email:         m.Email,
		Phone:         m.Phone,
		RequestedRole: m.RequestedRole,
		DepartmentID:  m.DepartmentID,
		Purpose:       m.Purpose,
		Status:        m.Status,
		SubmittedAt:   m.SubmittedAt,
		ReviewedAt:    m.ReviewedAt,
		ReviewerID:    m.ReviewerID,
		ReviewComment: m.ReviewComment,
		CreatedUserID: m.CreatedUserID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToDataModel(a *AccessRequest) *accessrequestDatamodel.AccessRequest {
	return &accessrequestDatamodel.AccessRequest{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		Name:          a.Name,
		Email:         a.Email,
		Phone:         a.Phone,
		RequestedRole: a.RequestedRole,
		DepartmentID:  a.DepartmentID,
		Purpose:       a.Purpose,
		Status:        a.Status,
		SubmittedAt:   a.SubmittedAt,
		ReviewedAt:    a.ReviewedAt,
		ReviewerID:    a.ReviewerID,
		ReviewComment: a.ReviewComment,
		CreatedUserID: a.CreatedUserID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func FromDataModelSlice(models []*accessrequestDatamodel.AccessRequest) []*AccessRequest {
	result := make([]*AccessRequest, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
