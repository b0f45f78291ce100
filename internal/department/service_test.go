package department_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	departmentDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/department"
	"github.com/ldworks/trainee-management/internal/department"
)

func TestDepartmentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Service Suite")
}

type mockRepository struct {
	departments map[int64]*departmentDatamodel.Department
	nextID      int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		departments: make(map[int64]*departmentDatamodel.Department),
		nextID:      1,
	}
}

func (m *mockRepository) GetAll(activeOnly bool) ([]*departmentDatamodel.Department, error) {
	var result []*departmentDatamodel.Department
	for _, d := range m.departments {
		if activeOnly && !d.IsActive {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

func (m *mockRepository) GetByID(id int64) (*departmentDatamodel.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, department.ErrNotFound
	}
	return d, nil
}

func (m *mockRepository) GetByCode(code string) (*departmentDatamodel.Department, error) {
	for _, d := range m.departments {
		if d.Code == code {
			return d, nil
		}
	}
	return nil, department.ErrNotFound
}

func (m *mockRepository) Create(dept *departmentDatamodel.Department) error {
	dept.ID = m.nextID
	m.nextID++
	m.departments[dept.ID] = dept
	return nil
}

func (m *mockRepository) SetActive(id int64, active bool) error {
	d, ok := m.departments[id]
	if !ok {
		return department.ErrNotFound
	}
	d.IsActive = active
	return nil
}

var _ = Describe("Department Service", func() {
	var (
		mockRepo *mockRepository
		service  *department.Service

		admin   *auth.Actor
		trainee *auth.Actor
	)

	BeforeEach(func() {
		mockRepo = newMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = department.NewService(mockRepo, logger)

		admin = &auth.Actor{ID: 1, Role: authz.RoleAdmin}
		trainee = &auth.Actor{ID: 6, Role: authz.RoleTrainee}
	})

	Describe("GetAll", func() {
		It("should list only active departments", func() {
			Expect(mockRepo.Create(&departmentDatamodel.Department{Name: "Engineering", Code: "ENG", IsActive: true})).To(Succeed())
			Expect(mockRepo.Create(&departmentDatamodel.Department{Name: "Legacy", Code: "OLD", IsActive: false})).To(Succeed())

			departments, err := service.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(departments).To(HaveLen(1))
			Expect(departments[0].Code).To(Equal("ENG"))
		})
	})

	Describe("Create", func() {
		It("should refuse callers without the manage permission", func() {
			_, err := service.Create(trainee, &department.CreateDepartmentDTO{Name: "Engineering", Code: "eng"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should uppercase the code and start active", func() {
			dept, err := service.Create(admin, &department.CreateDepartmentDTO{Name: "Engineering", Code: "eng"})
			Expect(err).NotTo(HaveOccurred())
			Expect(dept.Code).To(Equal("ENG"))
			Expect(dept.IsActive).To(BeTrue())
			Expect(dept.ID).NotTo(BeZero())
		})

		It("should refuse a duplicate code regardless of case", func() {
			_, err := service.Create(admin, &department.CreateDepartmentDTO{Name: "Engineering", Code: "ENG"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(admin, &department.CreateDepartmentDTO{Name: "Engines", Code: "eng"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("should require name and code", func() {
			_, err := service.Create(admin, &department.CreateDepartmentDTO{Name: "  ", Code: "ENG"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Deactivate", func() {
		It("should hide the department from pickers", func() {
			dept, err := service.Create(admin, &department.CreateDepartmentDTO{Name: "Engineering", Code: "ENG"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Deactivate(admin, dept.ID)).To(Succeed())

			departments, err := service.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(departments).To(BeEmpty())
			Expect(service.Exists(dept.ID)).To(BeFalse())
		})

		It("should be gated on the manage permission", func() {
			err := service.Deactivate(trainee, 1)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should return not found for missing departments", func() {
			err := service.Deactivate(admin, 404)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("GetByID and Exists", func() {
		It("should return the department", func() {
			dept, err := service.Create(admin, &department.CreateDepartmentDTO{Name: "Engineering", Code: "ENG"})
			Expect(err).NotTo(HaveOccurred())

			loaded, err := service.GetByID(dept.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Name).To(Equal("Engineering"))
			Expect(service.Exists(dept.ID)).To(BeTrue())
		})

		It("should return not found for missing ids", func() {
			_, err := service.GetByID(404)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
			Expect(service.Exists(404)).To(BeFalse())
		})
	})
})
