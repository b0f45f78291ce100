package accessrequest_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/accessrequest"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
)

func TestAccessRequestService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AccessRequest Service Suite")
}

type mockRepository struct {
	requests    map[int64]*accessrequest.AccessRequest
	takenEmails map[string]bool
	createdUser *accessrequest.NewUser
	nextID      int64
	nextUserID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		requests:    make(map[int64]*accessrequest.AccessRequest),
		takenEmails: make(map[string]bool),
		nextID:      1,
		nextUserID:  100,
	}
}

func (m *mockRepository) Create(req *accessrequest.AccessRequest) error {
	req.ID = m.nextID
	m.nextID++
	m.requests[req.ID] = req
	return nil
}

func (m *mockRepository) GetByID(id int64) (*accessrequest.AccessRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, accessrequest.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *mockRepository) List(filter accessrequest.ListFilter) ([]*accessrequest.AccessRequest, error) {
	var result []*accessrequest.AccessRequest
	for _, req := range m.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		result = append(result, req)
	}
	return result, nil
}

func (m *mockRepository) HasOpenRequestForEmail(email string) (bool, error) {
	for _, req := range m.requests {
		if req.Email == email && req.Status == accessrequest.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) Approve(id, reviewerID int64, comment string, newUser *accessrequest.NewUser, at time.Time) (*accessrequest.AccessRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, accessrequest.ErrNotFound
	}
	if req.Status != accessrequest.StatusPending {
		return nil, accessrequest.ErrAlreadyDecided
	}
	if m.takenEmails[newUser.Email] {
		return nil, accessrequest.ErrEmailTaken
	}

	m.createdUser = newUser
	userID := m.nextUserID
	m.nextUserID++

	req.Status = accessrequest.StatusApproved
	req.ReviewerID = &reviewerID
	req.ReviewComment = comment
	req.ReviewedAt = &at
	req.CreatedUserID = &userID

	copied := *req
	return &copied, nil
}

func (m *mockRepository) Reject(id, reviewerID int64, comment string, at time.Time) (*accessrequest.AccessRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, accessrequest.ErrNotFound
	}
	if req.Status != accessrequest.StatusPending {
		return nil, accessrequest.ErrAlreadyDecided
	}

	req.Status = accessrequest.StatusRejected
	req.ReviewerID = &reviewerID
	req.ReviewComment = comment
	req.ReviewedAt = &at

	copied := *req
	return &copied, nil
}

func deptPtr(id int64) *int64 { return &id }

var _ = Describe("AccessRequest Service", func() {
	var (
		mockRepo *mockRepository
		service  *accessrequest.Service

		admin   *auth.Actor
		trainee *auth.Actor
	)

	BeforeEach(func() {
		mockRepo = newMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = accessrequest.NewService(mockRepo, nil, bcrypt.MinCost, logger)

		admin = &auth.Actor{ID: 1, Role: authz.RoleAdmin}
		trainee = &auth.Actor{ID: 6, Role: authz.RoleTrainee}
	})

	validDTO := func() *accessrequest.SubmitAccessRequestDTO {
		return &accessrequest.SubmitAccessRequestDTO{
			EmployeeID:    "EMP-1001",
			Name:          "Sari Wulandari",
			Email:         "Sari@Example.com",
			RequestedRole: authz.RoleTrainee,
		}
	}

	Describe("Submit", func() {
		It("should record the request as pending with a normalized email", func() {
			req, err := service.Submit(validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(accessrequest.StatusPending))
			Expect(req.Email).To(Equal("sari@example.com"))
		})

		It("should refuse a second open request for the same email", func() {
			_, err := service.Submit(validDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Submit(validDTO())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("should refuse admin account requests", func() {
			dto := validDTO()
			dto.RequestedRole = authz.RoleAdmin
			_, err := service.Submit(dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should require a department for department-bound roles", func() {
			dto := validDTO()
			dto.RequestedRole = authz.RoleMentor
			_, err := service.Submit(dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should refuse unknown roles", func() {
			dto := validDTO()
			dto.RequestedRole = "superuser"
			_, err := service.Submit(dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Review", func() {
		var requestID int64

		BeforeEach(func() {
			req, err := service.Submit(validDTO())
			Expect(err).NotTo(HaveOccurred())
			requestID = req.ID
		})

		It("should refuse reviewers without the permission", func() {
			_, err := service.Review(context.Background(), trainee, requestID, &accessrequest.ReviewAccessRequestDTO{
				Decision: accessrequest.StatusApproved,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should create the user account on approval", func() {
			decided, err := service.Review(context.Background(), admin, requestID, &accessrequest.ReviewAccessRequestDTO{
				Decision: accessrequest.StatusApproved,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(accessrequest.StatusApproved))
			Expect(decided.CreatedUserID).NotTo(BeNil())

			Expect(mockRepo.createdUser).NotTo(BeNil())
			Expect(mockRepo.createdUser.Email).To(Equal("sari@example.com"))
			Expect(mockRepo.createdUser.Role).To(Equal(authz.RoleTrainee))
			// The account starts with a bcrypt hash, never a plaintext password.
			Expect(mockRepo.createdUser.PasswordHash).To(HavePrefix("$2"))
			_, err = bcrypt.Cost([]byte(mockRepo.createdUser.PasswordHash))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should default mentor capacity when approving a mentor", func() {
			mentorReq := &accessrequest.SubmitAccessRequestDTO{
				EmployeeID:    "EMP-1002",
				Name:          "Budi Santoso",
				Email:         "budi@example.com",
				RequestedRole: authz.RoleMentor,
				DepartmentID:  deptPtr(10),
			}
			req, err := service.Submit(mentorReq)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Review(context.Background(), admin, req.ID, &accessrequest.ReviewAccessRequestDTO{
				Decision: accessrequest.StatusApproved,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.createdUser.MentorCap).To(Equal(3))
		})

		It("should honor an explicit mentor capacity", func() {
			mentorReq := &accessrequest.SubmitAccessRequestDTO{
				EmployeeID:    "EMP-1002",
				Name:          "Budi Santoso",
				Email:         "budi@example.com",
				RequestedRole: authz.RoleMentor,
				DepartmentID:  deptPtr(10),
			}
			req, err := service.Submit(mentorReq)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Review(context.Background(), admin, req.ID, &accessrequest.ReviewAccessRequestDTO{
				Decision:       accessrequest.StatusApproved,
				MentorCapacity: 5,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.createdUser.MentorCap).To(Equal(5))
		})

		It("should require a comment when rejecting", func() {
			_, err := service.Review(context.Background(), admin, requestID, &accessrequest.ReviewAccessRequestDTO{
				Decision: accessrequest.StatusRejected,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should record the rejection without creating a user", func() {
			decided, err := service.Review(context.Background(), admin, requestID, &accessrequest.ReviewAccessRequestDTO{
				Decision: accessrequest.StatusRejected,
				Comment:  "role not justified",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(accessrequest.StatusRejected))
			Expect(decided.CreatedUserID).To(BeNil())
			Expect(mockRepo.createdUser).To(BeNil())
		})

		It("should refuse to decide twice", func() {
			_, err := service.Review(context.Background(), admin, requestID, &accessrequest.ReviewAccessRequestDTO{
				Decision: accessrequest.StatusApproved,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Review(context.Background(), admin, requestID, &accessrequest.ReviewAccessRequestDTO{
				Decision: accessrequest.StatusRejected,
				Comment:  "changed my mind",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("should surface a taken email as a conflict", func() {
			mockRepo.takenEmails["sari@example.com"] = true

			_, err := service.Review(context.Background(), admin, requestID, &accessrequest.ReviewAccessRequestDTO{
				Decision: accessrequest.StatusApproved,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})
	})

	Describe("List and GetByID", func() {
		BeforeEach(func() {
			_, err := service.Submit(validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should gate listing on the review queue permission", func() {
			_, err := service.List(trainee, accessrequest.ListFilter{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should return the queue for reviewers", func() {
			result, err := service.List(admin, accessrequest.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(1))
		})

		It("should return not found for missing ids", func() {
			_, err := service.GetByID(admin, 404)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})
})
