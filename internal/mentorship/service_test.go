package mentorship_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/core/events"
	"github.com/ldworks/trainee-management/internal/internship"
	"github.com/ldworks/trainee-management/internal/mentorship"
)

func TestMentorshipService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mentorship Service Suite")
}

type mockAssignmentRepo struct {
	assignments  map[int64]*mentorship.Assignment
	assignError  error
	releaseError error
	mentorEmails map[int64]string
	released     []int64
	nextID       int64
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments:  make(map[int64]*mentorship.Assignment),
		mentorEmails: make(map[int64]string),
		nextID:       1,
	}
}

func (m *mockAssignmentRepo) AssignWithinCapacity(requestID, expectedVersion, mentorID, assignedBy, departmentID int64) (*mentorship.Assignment, error) {
	if m.assignError != nil {
		return nil, m.assignError
	}
	assignment := &mentorship.Assignment{
		ID:         m.nextID,
		RequestID:  requestID,
		MentorID:   mentorID,
		AssignedBy: assignedBy,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	m.nextID++
	m.assignments[requestID] = assignment
	return assignment, nil
}

func (m *mockAssignmentRepo) GetActiveByRequestID(requestID int64) (*mentorship.Assignment, error) {
	assignment, ok := m.assignments[requestID]
	if !ok || !assignment.IsActive {
		return nil, mentorship.ErrAssignmentNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (m *mockAssignmentRepo) Acknowledge(requestID, mentorID int64, at time.Time) error {
	assignment, ok := m.assignments[requestID]
	if !ok {
		return mentorship.ErrAssignmentNotFound
	}
	assignment.AcknowledgedAt = &at
	return nil
}

func (m *mockAssignmentRepo) ReleaseActive(requestID int64, at time.Time) error {
	assignment, ok := m.assignments[requestID]
	if !ok || !assignment.IsActive {
		return mentorship.ErrAssignmentNotFound
	}
	assignment.IsActive = false
	assignment.ReleasedAt = &at
	m.released = append(m.released, requestID)
	return nil
}

func (m *mockAssignmentRepo) ReleaseAndRevert(requestID, expectedVersion int64, at time.Time) error {
	if m.releaseError != nil {
		return m.releaseError
	}
	assignment, ok := m.assignments[requestID]
	if !ok || !assignment.IsActive {
		return mentorship.ErrAssignmentNotFound
	}
	assignment.IsActive = false
	assignment.ReleasedAt = &at
	m.released = append(m.released, requestID)
	return nil
}

func (m *mockAssignmentRepo) ListForMentor(mentorID int64) ([]*mentorship.Assignment, error) {
	var result []*mentorship.Assignment
	for _, a := range m.assignments {
		if a.MentorID == mentorID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) MentorLoads(departmentID int64) ([]*mentorship.MentorLoad, error) {
	return []*mentorship.MentorLoad{}, nil
}

func (m *mockAssignmentRepo) GetMentorEmail(mentorID int64) (string, error) {
	email, ok := m.mentorEmails[mentorID]
	if !ok {
		return "", mentorship.ErrMentorNotFound
	}
	return email, nil
}

type mockRequestGetter struct {
	requests map[int64]*internship.Request
}

func (m *mockRequestGetter) GetByID(id int64) (*internship.Request, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, internship.ErrNotFound
	}
	return req, nil
}

func deptPtr(id int64) *int64 { return &id }

var _ = Describe("Mentorship Service", func() {
	var (
		repo     *mockAssignmentRepo
		requests *mockRequestGetter
		service  *mentorship.Service

		admin    *auth.Actor
		deptHead *auth.Actor
		mentor   *auth.Actor
	)

	BeforeEach(func() {
		repo = newMockAssignmentRepo()
		requests = &mockRequestGetter{requests: make(map[int64]*internship.Request)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = mentorship.NewService(repo, requests, nil, logger)

		admin = &auth.Actor{ID: 1, Role: authz.RoleAdmin}
		deptHead = &auth.Actor{ID: 4, Role: authz.RoleDepartmentHoD, DepartmentID: deptPtr(10)}
		mentor = &auth.Actor{ID: 5, Role: authz.RoleMentor, DepartmentID: deptPtr(10)}
	})

	Describe("Assign", func() {
		BeforeEach(func() {
			requests.requests[100] = &internship.Request{
				ID:           100,
				TraineeName:  "Sari Wulandari",
				DepartmentID: 10,
				Status:       internship.StatusApproved,
				Version:      2,
			}
		})

		It("should assign a mentor to an approved request", func() {
			assignment, err := service.Assign(context.Background(), deptHead, 100, &mentorship.AssignMentorDTO{
				MentorID:       mentor.ID,
				RequestVersion: 2,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.MentorID).To(Equal(mentor.ID))
			Expect(assignment.AssignedBy).To(Equal(deptHead.ID))
			Expect(assignment.IsActive).To(BeTrue())
		})

		It("should refuse roles without the assign permission", func() {
			_, err := service.Assign(context.Background(), mentor, 100, &mentorship.AssignMentorDTO{
				MentorID:       mentor.ID,
				RequestVersion: 2,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should refuse cross-department assignment for department heads", func() {
			requests.requests[100].DepartmentID = 20

			_, err := service.Assign(context.Background(), deptHead, 100, &mentorship.AssignMentorDTO{
				MentorID:       mentor.ID,
				RequestVersion: 2,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should refuse requests that are not awaiting assignment", func() {
			requests.requests[100].Status = internship.StatusUnderReview

			_, err := service.Assign(context.Background(), deptHead, 100, &mentorship.AssignMentorDTO{
				MentorID:       mentor.ID,
				RequestVersion: 2,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidTransition))
		})

		It("should map a full mentor to a capacity conflict", func() {
			repo.assignError = mentorship.ErrCapacityExceeded

			_, err := service.Assign(context.Background(), deptHead, 100, &mentorship.AssignMentorDTO{
				MentorID:       mentor.ID,
				RequestVersion: 2,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeCapacityExceeded))
			Expect(appErr.StatusCode).To(Equal(409))
		})

		It("should map a version race to a stale state conflict", func() {
			repo.assignError = mentorship.ErrRequestConflict

			_, err := service.Assign(context.Background(), deptHead, 100, &mentorship.AssignMentorDTO{
				MentorID:       mentor.ID,
				RequestVersion: 1,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeStaleState))
		})

		It("should map an unknown mentor to not found", func() {
			repo.assignError = mentorship.ErrMentorNotFound

			_, err := service.Assign(context.Background(), deptHead, 100, &mentorship.AssignMentorDTO{
				MentorID:       999,
				RequestVersion: 2,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("Release", func() {
		BeforeEach(func() {
			requests.requests[100] = &internship.Request{
				ID:           100,
				TraineeName:  "Sari Wulandari",
				DepartmentID: 10,
				Status:       internship.StatusMentorAssigned,
				Version:      3,
			}
			repo.assignments[100] = &mentorship.Assignment{
				ID: 1, RequestID: 100, MentorID: mentor.ID, AssignedBy: deptHead.ID, IsActive: true,
			}
		})

		It("should release the active assignment", func() {
			err := service.Release(context.Background(), deptHead, 100, &mentorship.ReleaseMentorDTO{RequestVersion: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.assignments[100].IsActive).To(BeFalse())
			Expect(repo.assignments[100].ReleasedAt).NotTo(BeNil())
		})

		It("should refuse roles without the assign permission", func() {
			err := service.Release(context.Background(), mentor, 100, &mentorship.ReleaseMentorDTO{RequestVersion: 3})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
			Expect(repo.assignments[100].IsActive).To(BeTrue())
		})

		It("should refuse cross-department release for department heads", func() {
			requests.requests[100].DepartmentID = 20

			err := service.Release(context.Background(), deptHead, 100, &mentorship.ReleaseMentorDTO{RequestVersion: 3})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should map a version race to a stale state conflict", func() {
			repo.releaseError = mentorship.ErrRequestConflict

			err := service.Release(context.Background(), deptHead, 100, &mentorship.ReleaseMentorDTO{RequestVersion: 2})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeStaleState))
		})

		It("should refuse requests that are not in the assigned state", func() {
			requests.requests[100].Status = internship.StatusInProgress
			repo.releaseError = mentorship.ErrRequestNotReleasable

			err := service.Release(context.Background(), deptHead, 100, &mentorship.ReleaseMentorDTO{RequestVersion: 3})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidTransition))
		})

		It("should return not found for an unknown request", func() {
			err := service.Release(context.Background(), admin, 404, &mentorship.ReleaseMentorDTO{RequestVersion: 1})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("Acknowledge", func() {
		BeforeEach(func() {
			repo.assignments[100] = &mentorship.Assignment{
				ID: 1, RequestID: 100, MentorID: mentor.ID, AssignedBy: deptHead.ID, IsActive: true,
			}
		})

		It("should record the acknowledgement for the assigned mentor", func() {
			assignment, err := service.Acknowledge(mentor, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.AcknowledgedAt).NotTo(BeNil())
		})

		It("should be idempotent", func() {
			first, err := service.Acknowledge(mentor, 100)
			Expect(err).NotTo(HaveOccurred())

			second, err := service.Acknowledge(mentor, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.AcknowledgedAt).To(Equal(first.AcknowledgedAt))
		})

		It("should refuse a different mentor", func() {
			other := &auth.Actor{ID: 77, Role: authz.RoleMentor}
			_, err := service.Acknowledge(other, 100)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should let an admin acknowledge on the mentor's behalf", func() {
			assignment, err := service.Acknowledge(admin, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.AcknowledgedAt).NotTo(BeNil())
		})

		It("should return not found without an active assignment", func() {
			_, err := service.Acknowledge(mentor, 404)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("HasAcknowledgedAssignment", func() {
		It("should report false when nothing is assigned", func() {
			acknowledged, err := service.HasAcknowledgedAssignment(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(acknowledged).To(BeFalse())
		})

		It("should report the acknowledgement state of the active assignment", func() {
			now := time.Now()
			repo.assignments[100] = &mentorship.Assignment{
				ID: 1, RequestID: 100, MentorID: mentor.ID, IsActive: true, AcknowledgedAt: &now,
			}

			acknowledged, err := service.HasAcknowledgedAssignment(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(acknowledged).To(BeTrue())
		})
	})

	Describe("HandleRequestClosed", func() {
		BeforeEach(func() {
			repo.assignments[100] = &mentorship.Assignment{
				ID: 1, RequestID: 100, MentorID: mentor.ID, IsActive: true,
			}
		})

		It("should release the active assignment on a terminal transition", func() {
			event := events.NewInternshipTransitionedEvent(100, internship.StatusInProgress, internship.StatusCompleted, 3, authz.RoleLDHoD, "sari@example.com")
			Expect(service.HandleRequestClosed(context.Background(), event)).To(Succeed())
			Expect(repo.released).To(ContainElement(int64(100)))
			Expect(repo.assignments[100].IsActive).To(BeFalse())
		})

		It("should ignore non-terminal transitions", func() {
			event := events.NewInternshipTransitionedEvent(100, internship.StatusSubmitted, internship.StatusUnderReview, 2, authz.RoleLDCoordinator, "sari@example.com")
			Expect(service.HandleRequestClosed(context.Background(), event)).To(Succeed())
			Expect(repo.assignments[100].IsActive).To(BeTrue())
		})

		It("should tolerate requests that never had an assignment", func() {
			event := events.NewInternshipTransitionedEvent(999, internship.StatusUnderReview, internship.StatusRejected, 2, authz.RoleLDCoordinator, "sari@example.com")
			Expect(service.HandleRequestClosed(context.Background(), event)).To(Succeed())
		})
	})

	Describe("MentorLoads", func() {
		It("should force department heads onto their own department", func() {
			_, err := service.MentorLoads(deptHead, 999)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should require a department for organization-wide callers", func() {
			_, err := service.MentorLoads(admin, 0)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})
})
