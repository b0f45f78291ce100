package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ldworks/trainee-management/internal/accessrequest"
	"github.com/ldworks/trainee-management/internal/authz"
)

func TestAccessRequestRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AccessRequestRepository Suite")
}

type SQLiteAccessRequest struct {
	ID            int64      `gorm:"primaryKey"`
	EmployeeID    string     `gorm:"column:employee_id;not null"`
	Name          string     `gorm:"column:name;not null"`
	Email         string     `gorm:"column:email;not null"`
	Phone         string     `gorm:"column:phone"`
	RequestedRole string     `gorm:"column:requested_role;not null"`
	DepartmentID  *int64     `gorm:"column:department_id"`
	Purpose       string     `gorm:"column:purpose"`
	Status        string     `gorm:"column:status;default:pending"`
	SubmittedAt   time.Time  `gorm:"column:submitted_at"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at"`
	ReviewerID    *int64     `gorm:"column:reviewer_id"`
	ReviewComment string     `gorm:"column:review_comment"`
	CreatedUserID *int64     `gorm:"column:created_user_id"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (SQLiteAccessRequest) TableName() string {
	return "access_requests"
}

type SQLiteUser struct {
	ID           int64  `gorm:"primaryKey"`
	EmployeeID   string `gorm:"column:employee_id;uniqueIndex"`
	Email        string `gorm:"column:email;uniqueIndex"`
	Name         string `gorm:"column:name"`
	Phone        string `gorm:"column:phone"`
	PasswordHash string `gorm:"column:password_hash"`
	Role         string `gorm:"column:role"`
	DepartmentID *int64 `gorm:"column:department_id"`
	MentorCap    int    `gorm:"column:mentor_capacity;default:0"`
	IsActive     bool   `gorm:"column:is_active;default:true"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

var _ = Describe("AccessRequestRepository", func() {
	var (
		db   *gorm.DB
		repo accessrequest.Repository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteAccessRequest{}, &SQLiteUser{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewAccessRequestRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	newRequest := func() *accessrequest.AccessRequest {
		return &accessrequest.AccessRequest{
			EmployeeID:    "EMP-1001",
			Name:          "Sari Wulandari",
			Email:         "sari@example.com",
			RequestedRole: authz.RoleTrainee,
			Status:        accessrequest.StatusPending,
			SubmittedAt:   time.Now(),
		}
	}

	newUser := func() *accessrequest.NewUser {
		return &accessrequest.NewUser{
			EmployeeID:   "EMP-1001",
			Email:        "sari@example.com",
			Name:         "Sari Wulandari",
			PasswordHash: "$2a$04$examplehash",
			Role:         authz.RoleTrainee,
		}
	}

	Describe("Create and GetByID", func() {
		It("should round-trip a request", func() {
			req := newRequest()
			Expect(repo.Create(req)).To(Succeed())
			Expect(req.ID).NotTo(BeZero())

			loaded, err := repo.GetByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Email).To(Equal("sari@example.com"))
			Expect(loaded.Status).To(Equal(accessrequest.StatusPending))
		})

		It("should return the not-found sentinel for missing ids", func() {
			_, err := repo.GetByID(404)
			Expect(err).To(MatchError(accessrequest.ErrNotFound))
		})
	})

	Describe("HasOpenRequestForEmail", func() {
		It("should see only pending requests", func() {
			req := newRequest()
			Expect(repo.Create(req)).To(Succeed())

			open, err := repo.HasOpenRequestForEmail("sari@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(BeTrue())

			_, err = repo.Reject(req.ID, 1, "not eligible", time.Now())
			Expect(err).NotTo(HaveOccurred())

			open, err = repo.HasOpenRequestForEmail("sari@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(BeFalse())
		})
	})

	Describe("Approve", func() {
		var requestID int64

		BeforeEach(func() {
			req := newRequest()
			Expect(repo.Create(req)).To(Succeed())
			requestID = req.ID
		})

		It("should create the user and flip the request together", func() {
			decided, err := repo.Approve(requestID, 1, "welcome", newUser(), time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(accessrequest.StatusApproved))
			Expect(decided.ReviewerID).NotTo(BeNil())
			Expect(decided.CreatedUserID).NotTo(BeNil())

			var user SQLiteUser
			Expect(db.First(&user, *decided.CreatedUserID).Error).To(Succeed())
			Expect(user.Email).To(Equal("sari@example.com"))
			Expect(user.IsActive).To(BeTrue())
		})

		It("should leave nothing behind when the email is taken", func() {
			Expect(db.Create(&SQLiteUser{
				EmployeeID: "EMP-9999",
				Email:      "sari@example.com",
				Role:       authz.RoleTrainee,
				IsActive:   true,
			}).Error).To(Succeed())

			_, err := repo.Approve(requestID, 1, "", newUser(), time.Now())
			Expect(err).To(MatchError(accessrequest.ErrEmailTaken))

			loaded, err := repo.GetByID(requestID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Status).To(Equal(accessrequest.StatusPending))

			var count int64
			Expect(db.Model(&SQLiteUser{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})

		It("should refuse an already decided request without creating a user", func() {
			_, err := repo.Reject(requestID, 1, "not eligible", time.Now())
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Approve(requestID, 1, "", newUser(), time.Now())
			Expect(err).To(MatchError(accessrequest.ErrAlreadyDecided))

			var count int64
			Expect(db.Model(&SQLiteUser{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("should report a missing request", func() {
			_, err := repo.Approve(404, 1, "", newUser(), time.Now())
			Expect(err).To(MatchError(accessrequest.ErrNotFound))
		})
	})

	Describe("Reject", func() {
		It("should record the decision and the comment", func() {
			req := newRequest()
			Expect(repo.Create(req)).To(Succeed())

			decided, err := repo.Reject(req.ID, 1, "role not justified", time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(accessrequest.StatusRejected))
			Expect(decided.ReviewComment).To(Equal("role not justified"))
			Expect(decided.ReviewedAt).NotTo(BeNil())
		})

		It("should refuse to decide twice", func() {
			req := newRequest()
			Expect(repo.Create(req)).To(Succeed())

			_, err := repo.Reject(req.ID, 1, "first", time.Now())
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Reject(req.ID, 2, "second", time.Now())
			Expect(err).To(MatchError(accessrequest.ErrAlreadyDecided))
		})
	})

	Describe("List", func() {
		It("should order the queue oldest first and filter by status", func() {
			first := newRequest()
			first.SubmittedAt = time.Now().Add(-time.Hour)
			Expect(repo.Create(first)).To(Succeed())

			second := newRequest()
			second.EmployeeID = "EMP-1002"
			second.Email = "budi@example.com"
			Expect(repo.Create(second)).To(Succeed())

			_, err := repo.Reject(second.ID, 1, "not eligible", time.Now())
			Expect(err).NotTo(HaveOccurred())

			all, err := repo.List(accessrequest.ListFilter{Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].Email).To(Equal("sari@example.com"))

			pending, err := repo.List(accessrequest.ListFilter{Status: accessrequest.StatusPending, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].Email).To(Equal("sari@example.com"))
		})
	})
})
