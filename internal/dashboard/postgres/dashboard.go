package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ldworks/trainee-management/internal/dashboard"
)

// DashboardRepository implements the dashboard.RepositoryAPI interface with
// raw aggregate queries over sqlx.
type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) dashboard.RepositoryAPI {
	return &DashboardRepository{db: db}
}

// scopeClause turns the scope into a WHERE fragment over internship_requests.
func scopeClause(scope dashboard.Scope, args []interface{}) (string, []interface{}) {
	var conditions []string
	if scope.DepartmentID != nil {
		args = append(args, *scope.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if scope.MentorID != nil {
		args = append(args, *scope.MentorID)
		conditions = append(conditions, fmt.Sprintf("assigned_mentor_id = $%d", len(args)))
	}
	if scope.SubmittedBy != nil {
		args = append(args, *scope.SubmittedBy)
		conditions = append(conditions, fmt.Sprintf("submitted_by = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *DashboardRepository) StatusCounts(ctx context.Context, scope dashboard.Scope) ([]dashboard.StatusCount, error) {
	where, args := scopeClause(scope, nil)
	query := fmt.Sprintf(`
SELECT status, COUNT(*) AS count
FROM internship_requests%s
GROUP BY status
ORDER BY status`, where)

	var counts []dashboard.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("status counts query: %w", err)
	}
	return counts, nil
}

func (r *DashboardRepository) CountByStatus(ctx context.Context, scope dashboard.Scope, status string) (int64, error) {
	args := []interface{}{status}
	where, args := scopeClause(scope, args)
	if where == "" {
		where = " WHERE status = $1"
	} else {
		where += " AND status = $1"
	}
	query := "SELECT COUNT(*) FROM internship_requests" + where

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count by status query: %w", err)
	}
	return count, nil
}

func (r *DashboardRepository) PendingAccessRequests(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM access_requests WHERE status = 'pending'`
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("pending access requests query: %w", err)
	}
	return count, nil
}

func (r *DashboardRepository) MonthlyTrend(ctx context.Context, scope dashboard.Scope, months int) ([]dashboard.MonthlyCount, error) {
	args := []interface{}{months}
	where, args := scopeClause(scope, args)
	base := "submitted_at >= date_trunc('month', NOW()) - ($1 || ' months')::interval"
	if where == "" {
		where = " WHERE " + base
	} else {
		where += " AND " + base
	}

	query := fmt.Sprintf(`
SELECT to_char(submitted_at, 'YYYY-MM') AS month, COUNT(*) AS count
FROM internship_requests%s
GROUP BY to_char(submitted_at, 'YYYY-MM')
ORDER BY month`, where)

	var trend []dashboard.MonthlyCount
	if err := r.db.SelectContext(ctx, &trend, query, args...); err != nil {
		return nil, fmt.Errorf("monthly trend query: %w", err)
	}
	return trend, nil
}

func (r *DashboardRepository) MentorUtilization(ctx context.Context, departmentID int64) ([]dashboard.MentorUtilization, error) {
	query := `
SELECT u.id AS mentor_id,
       u.name,
       u.mentor_capacity AS capacity,
       COUNT(ma.id) AS active_count
FROM users u
LEFT JOIN mentor_assignments ma ON ma.mentor_id = u.id AND ma.is_active = true
WHERE u.role = 'mentor' AND u.department_id = $1 AND u.is_active = true
GROUP BY u.id, u.name, u.mentor_capacity
ORDER BY u.name`

	var utilization []dashboard.MentorUtilization
	if err := r.db.SelectContext(ctx, &utilization, query, departmentID); err != nil {
		return nil, fmt.Errorf("mentor utilization query: %w", err)
	}
	return utilization, nil
}
