package accessrequest

import "time"

type AccessRequest struct {
	ID              int64      `gorm:"primaryKey"`
	EmployeeID      string     `gorm:"column:employee_id;not null"`
	Name            string     `gorm:"column:name;not null"`
	Email           string     `gorm:"column:email;not null"`
	Phone           string     `gorm:"column:phone"`
	RequestedRole   string     `gorm:"column:requested_role;not null"`
	DepartmentID    *int64     `gorm:"column:department_id"`
	Purpose         string     `gorm:"column:purpose"`
	Status          string     `gorm:"column:status;default:pending"`
	SubmittedAt     time.Time  `gorm:"column:submitted_at"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	ReviewerID      *int64     `gorm:"column:reviewer_id"`
	ReviewComment   string     `gorm:"column:review_comment"`
	CreatedUserID   *int64     `gorm:"column:created_user_id"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (AccessRequest) TableName() string {
	return "access_requests"
}
