package dashboard

import "github.com/ldworks/trainee-management/internal/authz"

// StatusCount is one status bucket in a summary.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count" json:"count"`
}

// MonthlyCount is one month of the submission trend, keyed as YYYY-MM.
type MonthlyCount struct {
	Month string `db:"month" json:"month"`
	Count int64  `db:"count" json:"count"`
}

// MentorUtilization pairs a mentor with their active load and capacity.
type MentorUtilization struct {
	MentorID    int64  `db:"mentor_id" json:"mentor_id"`
	Name        string `db:"name" json:"name"`
	Capacity    int    `db:"capacity" json:"capacity"`
	ActiveCount int64  `db:"active_count" json:"active_count"`
}

// Summary is the dashboard payload. Which sections are populated depends on
// the caller's scope; the variant tells the client which layout to render.
type Summary struct {
	Variant               authz.DashboardVariant `json:"variant"`
	StatusCounts          []StatusCount          `json:"status_counts"`
	PendingAccessRequests *int64                 `json:"pending_access_requests,omitempty"`
	ActiveInternships     int64                  `json:"active_internships"`
	AwaitingReview        int64                  `json:"awaiting_review"`
	MonthlyTrend          []MonthlyCount         `json:"monthly_trend,omitempty"`
	MentorUtilization     []MentorUtilization    `json:"mentor_utilization,omitempty"`
}
