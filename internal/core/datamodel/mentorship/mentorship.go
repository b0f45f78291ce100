package mentorship

import "time"

type MentorAssignment struct {
	ID             int64      `gorm:"primaryKey"`
	RequestID      int64      `gorm:"column:request_id;not null;index"`
	MentorID       int64      `gorm:"column:mentor_id;not null;index"`
	AssignedBy     int64      `gorm:"column:assigned_by;not null"`
	IsActive       bool       `gorm:"column:is_active;default:true"`
	AcknowledgedAt *time.Time `gorm:"column:acknowledged_at"`
	ReleasedAt     *time.Time `gorm:"column:released_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (MentorAssignment) TableName() string {
	return "mentor_assignments"
}
