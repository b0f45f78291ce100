package dashboard_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/dashboard"
)

func TestDashboardService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Service Suite")
}

type mockRepository struct {
	statusCounts   []dashboard.StatusCount
	pendingSignups int64
	trend          []dashboard.MonthlyCount
	utilization    []dashboard.MentorUtilization
	err            error

	lastScope       dashboard.Scope
	trendQueried    bool
	utilizationDept *int64
	pendingQueried  bool
}

func (m *mockRepository) StatusCounts(ctx context.Context, scope dashboard.Scope) ([]dashboard.StatusCount, error) {
	m.lastScope = scope
	return m.statusCounts, m.err
}

func (m *mockRepository) CountByStatus(ctx context.Context, scope dashboard.Scope, status string) (int64, error) {
	return 2, m.err
}

func (m *mockRepository) PendingAccessRequests(ctx context.Context) (int64, error) {
	m.pendingQueried = true
	return m.pendingSignups, m.err
}

func (m *mockRepository) MonthlyTrend(ctx context.Context, scope dashboard.Scope, months int) ([]dashboard.MonthlyCount, error) {
	m.trendQueried = true
	return m.trend, m.err
}

func (m *mockRepository) MentorUtilization(ctx context.Context, departmentID int64) ([]dashboard.MentorUtilization, error) {
	m.utilizationDept = &departmentID
	return m.utilization, m.err
}

func deptPtr(id int64) *int64 { return &id }

var _ = Describe("Dashboard Service", func() {
	var (
		mockRepo *mockRepository
		service  *dashboard.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = &mockRepository{
			statusCounts: []dashboard.StatusCount{{Status: "submitted", Count: 3}},
			trend:        []dashboard.MonthlyCount{{Month: "2026-08", Count: 4}},
			utilization:  []dashboard.MentorUtilization{{MentorID: 5, Name: "Engineering Mentor", Capacity: 3, ActiveCount: 1}},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = dashboard.NewService(mockRepo, logger)
		ctx = context.Background()
	})

	It("should give the admin the organization-wide view with the signup queue", func() {
		admin := &auth.Actor{ID: 1, Role: authz.RoleAdmin}
		mockRepo.pendingSignups = 7

		summary, err := service.Summary(ctx, admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Variant).To(Equal(authz.DashboardAdmin))
		Expect(mockRepo.lastScope).To(Equal(dashboard.Scope{}))
		Expect(summary.PendingAccessRequests).NotTo(BeNil())
		Expect(*summary.PendingAccessRequests).To(Equal(int64(7)))
		Expect(summary.MonthlyTrend).To(HaveLen(1))
	})

	It("should narrow a department head to their department", func() {
		head := &auth.Actor{ID: 3, Role: authz.RoleDepartmentHoD, DepartmentID: deptPtr(10)}

		summary, err := service.Summary(ctx, head)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Variant).To(Equal(authz.DashboardDepartment))
		Expect(mockRepo.lastScope.DepartmentID).NotTo(BeNil())
		Expect(*mockRepo.lastScope.DepartmentID).To(Equal(int64(10)))

		// Dept heads see mentor load but not the signup queue.
		Expect(summary.MentorUtilization).To(HaveLen(1))
		Expect(mockRepo.utilizationDept).NotTo(BeNil())
		Expect(*mockRepo.utilizationDept).To(Equal(int64(10)))
		Expect(summary.PendingAccessRequests).To(BeNil())
		Expect(mockRepo.pendingQueried).To(BeFalse())
	})

	It("should return an empty variant for a department head without a department", func() {
		head := &auth.Actor{ID: 3, Role: authz.RoleDepartmentHoD}

		summary, err := service.Summary(ctx, head)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.StatusCounts).To(BeEmpty())
		Expect(summary.Variant).To(Equal(authz.DashboardDepartment))
	})

	It("should narrow a mentor to their assignments without a trend", func() {
		mentor := &auth.Actor{ID: 5, Role: authz.RoleMentor, DepartmentID: deptPtr(10)}

		summary, err := service.Summary(ctx, mentor)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Variant).To(Equal(authz.DashboardMentor))
		Expect(mockRepo.lastScope.MentorID).NotTo(BeNil())
		Expect(*mockRepo.lastScope.MentorID).To(Equal(int64(5)))
		Expect(summary.MonthlyTrend).To(BeEmpty())
		Expect(mockRepo.trendQueried).To(BeFalse())
		Expect(summary.MentorUtilization).To(BeEmpty())
	})

	It("should narrow a trainee to their own submissions", func() {
		trainee := &auth.Actor{ID: 6, Role: authz.RoleTrainee}

		summary, err := service.Summary(ctx, trainee)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Variant).To(Equal(authz.DashboardTrainee))
		Expect(mockRepo.lastScope.SubmittedBy).NotTo(BeNil())
		Expect(*mockRepo.lastScope.SubmittedBy).To(Equal(int64(6)))
	})

	It("should include the trend for the L&D head of department", func() {
		ldHead := &auth.Actor{ID: 2, Role: authz.RoleLDHoD}

		summary, err := service.Summary(ctx, ldHead)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Variant).To(Equal(authz.DashboardLDHoD))
		Expect(summary.MonthlyTrend).To(HaveLen(1))
	})

	It("should fail closed for unknown roles", func() {
		_, err := service.Summary(ctx, &auth.Actor{ID: 9, Role: "superuser"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
	})

	It("should surface repository failures as internal errors", func() {
		mockRepo.err = errors.New("connection reset")

		_, err := service.Summary(ctx, &auth.Actor{ID: 1, Role: authz.RoleAdmin})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
	})
})
