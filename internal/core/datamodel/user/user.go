package user

import "time"

type User struct {
	ID            int64      `gorm:"primaryKey"`
	EmployeeID    string     `gorm:"column:employee_id;uniqueIndex;not null"`
	Email         string     `gorm:"column:email;uniqueIndex;not null"`
	Name          string     `gorm:"column:name;not null"`
	Phone         string     `gorm:"column:phone"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	Role          string     `gorm:"column:role;not null"`
	DepartmentID  *int64     `gorm:"column:department_id"`
	MentorCap     int        `gorm:"column:mentor_capacity;default:0"`
	IsActive      bool       `gorm:"column:is_active;default:true"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeactivatedAt *time.Time `gorm:"column:deactivated_at"`
}

func (User) TableName() string {
	return "users"
}
