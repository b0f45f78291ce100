package dashboard

import (
	"context"
	"log/slog"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/internship"
)

// Scope narrows every aggregate query to what the caller may see. At most one
// of the pointer fields is set.
type Scope struct {
	DepartmentID *int64
	MentorID     *int64
	SubmittedBy  *int64
}

// RepositoryAPI defines the aggregate queries behind the dashboard.
type RepositoryAPI interface {
	StatusCounts(ctx context.Context, scope Scope) ([]StatusCount, error)
	CountByStatus(ctx context.Context, scope Scope, status string) (int64, error)
	PendingAccessRequests(ctx context.Context) (int64, error)
	MonthlyTrend(ctx context.Context, scope Scope, months int) ([]MonthlyCount, error)
	MentorUtilization(ctx context.Context, departmentID int64) ([]MentorUtilization, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Summary builds the dashboard for the caller. The scope comes from the role
// registry, never from client input.
func (s *Service) Summary(ctx context.Context, actor *auth.Actor) (*Summary, error) {
	if !actor.CanPerform(authz.ActionDashboardView) {
		return nil, internal.NewForbiddenError("you are not allowed to view the dashboard", internal.ErrCodeForbiddenAction)
	}

	scope := Scope{}
	switch actor.Scope() {
	case authz.ScopeOrganization:
		// everything
	case authz.ScopeDepartment:
		if actor.DepartmentID == nil {
			return &Summary{Variant: authz.DashboardVariantFor(actor.Role)}, nil
		}
		scope.DepartmentID = actor.DepartmentID
	case authz.ScopeAssigned:
		mentorID := actor.ID
		scope.MentorID = &mentorID
	case authz.ScopeSelf:
		submitterID := actor.ID
		scope.SubmittedBy = &submitterID
	default:
		return nil, internal.NewForbiddenError("you are not allowed to view the dashboard", internal.ErrCodeForbiddenAction)
	}

	summary := &Summary{Variant: authz.DashboardVariantFor(actor.Role)}

	counts, err := s.repo.StatusCounts(ctx, scope)
	if err != nil {
		s.logger.Error("failed to load status counts", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to load dashboard", err)
	}
	summary.StatusCounts = counts

	active, err := s.repo.CountByStatus(ctx, scope, internship.StatusInProgress)
	if err != nil {
		s.logger.Error("failed to count active internships", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to load dashboard", err)
	}
	summary.ActiveInternships = active

	awaiting, err := s.repo.CountByStatus(ctx, scope, internship.StatusUnderReview)
	if err != nil {
		s.logger.Error("failed to count requests awaiting review", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to load dashboard", err)
	}
	summary.AwaitingReview = awaiting

	// Admins see the signup queue.
	if actor.CanPerform(authz.ActionAccessRequestsReview) {
		pending, err := s.repo.PendingAccessRequests(ctx)
		if err != nil {
			s.logger.Error("failed to count pending access requests", "error", err, "user_id", actor.ID)
			return nil, internal.NewInternalError("failed to load dashboard", err)
		}
		summary.PendingAccessRequests = &pending
	}

	// Organization and department variants carry the submission trend.
	if actor.Scope() == authz.ScopeOrganization || actor.Scope() == authz.ScopeDepartment {
		trend, err := s.repo.MonthlyTrend(ctx, scope, 6)
		if err != nil {
			s.logger.Error("failed to load monthly trend", "error", err, "user_id", actor.ID)
			return nil, internal.NewInternalError("failed to load dashboard", err)
		}
		summary.MonthlyTrend = trend
	}

	// Department heads see their mentors' load.
	if actor.Scope() == authz.ScopeDepartment && actor.DepartmentID != nil {
		utilization, err := s.repo.MentorUtilization(ctx, *actor.DepartmentID)
		if err != nil {
			s.logger.Error("failed to load mentor utilization", "error", err, "user_id", actor.ID)
			return nil, internal.NewInternalError("failed to load dashboard", err)
		}
		summary.MentorUtilization = utilization
	}

	return summary, nil
}
