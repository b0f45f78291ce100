package internship

import "time"

type InternshipRequest struct {
	ID               int64      `gorm:"primaryKey"`
	TraineeName      string     `gorm:"column:trainee_name;not null"`
	TraineeEmail     string     `gorm:"column:trainee_email;not null"`
	TraineePhone     string     `gorm:"column:trainee_phone"`
	Institution      string     `gorm:"column:institution"`
	Course           string     `gorm:"column:course"`
	DurationWeeks    int        `gorm:"column:duration_weeks;not null"`
	DepartmentID     int64      `gorm:"column:department_id;not null"`
	Description      string     `gorm:"column:description"`
	Priority         string     `gorm:"column:priority;default:medium"`
	Status           string     `gorm:"column:status;default:submitted"`
	Version          int64      `gorm:"column:version;default:1"`
	SubmittedBy      int64      `gorm:"column:submitted_by;not null"`
	AssignedMentorID *int64     `gorm:"column:assigned_mentor_id"`
	RequiredReports  int        `gorm:"column:required_reports;default:0"`
	ReviewComment    string     `gorm:"column:review_comment"`
	SubmittedAt      time.Time  `gorm:"column:submitted_at"`
	ReviewedAt       *time.Time `gorm:"column:reviewed_at"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`
	StartedAt        *time.Time `gorm:"column:started_at"`
	ClosedAt         *time.Time `gorm:"column:closed_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (InternshipRequest) TableName() string {
	return "internship_requests"
}

type ProgressReport struct {
	ID          int64     `gorm:"primaryKey"`
	RequestID   int64     `gorm:"column:request_id;not null;index"`
	SubmittedBy int64     `gorm:"column:submitted_by;not null"`
	Title       string    `gorm:"column:title;not null"`
	Body        string    `gorm:"column:body"`
	SubmittedAt time.Time `gorm:"column:submitted_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProgressReport) TableName() string {
	return "progress_reports"
}
