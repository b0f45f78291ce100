package user

import (
	"errors"
	"time"

	userDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/user"
	"github.com/ldworks/trainee-management/internal/authz"
)

// User is the domain view of an account. The password hash never leaves the
// repository layer in API responses.
type User struct {
	ID            int64      `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone,omitempty"`
	PasswordHash  string     `json:"-"`
	Role          string     `json:"role"`
	DepartmentID  *int64     `json:"department_id,omitempty"`
	MentorCap     int        `json:"mentor_capacity,omitempty"`
	IsActive      bool       `json:"is_active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) CanPerform(action string) bool {
	return authz.CanPerform(u.Role, action)
}

func (u *User) IsAdmin() bool {
	return u.Role == authz.RoleAdmin
}

// Profile is the /users/me payload. Navigation and the dashboard variant are
// derived from the role registry so the client never hardcodes role names.
type Profile struct {
	User             *User                  `json:"user"`
	Permissions      []string               `json:"permissions"`
	Navigation       []authz.NavItem        `json:"navigation"`
	DashboardVariant authz.DashboardVariant `json:"dashboard_variant"`
}

var ErrNotFound = errors.New("user not found")

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:            u.ID,
		EmployeeID:    u.EmployeeID,
		Email:         u.Email,
		Name:          u.Name,
		Phone:         u.Phone,
		PasswordHash:  u.PasswordHash,
		Role:          u.Role,
		DepartmentID:  u.DepartmentID,
		MentorCap:     u.MentorCap,
		IsActive:      u.IsActive,
		DeactivatedAt: u.DeactivatedAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:            m.ID,
		EmployeeID:    m.EmployeeID,
		Email:         m.Email,
		Name:          m.Name,
		Phone:         m.Phone,
		PasswordHash:  m.PasswordHash,
		Role:          m.Role,
		DepartmentID:  m.DepartmentID,
		MentorCap:     m.MentorCap,
		IsActive:      m.IsActive,
		DeactivatedAt: m.DeactivatedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*userDatamodel.User) []*User {
	result := make([]*User, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
