package postgres

import (
	"errors"

	"gorm.io/gorm"

	departmentDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/department"
	"github.com/ldworks/trainee-management/internal/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll(activeOnly bool) ([]*departmentDatamodel.Department, error) {
	query := r.db.Model(&departmentDatamodel.Department{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var departments []*departmentDatamodel.Department
	err := query.Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByID(id int64) (*departmentDatamodel.Department, error) {
	var dept departmentDatamodel.Department
	err := r.db.Where("id = ?", id).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) GetByCode(code string) (*departmentDatamodel.Department, error) {
	var dept departmentDatamodel.Department
	err := r.db.Where("code = ?", code).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) Create(dept *departmentDatamodel.Department) error {
	return r.db.Create(dept).Error
}

func (r *DepartmentRepository) SetActive(id int64, active bool) error {
	result := r.db.Model(&departmentDatamodel.Department{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return department.ErrNotFound
	}
	return nil
}
