package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	userDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/user"
	"github.com/ldworks/trainee-management/internal/user"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var model userDatamodel.User
	err := r.db.Where("id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&model), nil
}

func (r *UserRepository) List(filter user.ListFilter) ([]*user.User, error) {
	query := r.db.Model(&userDatamodel.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var models []*userDatamodel.User
	err := query.
		Order("name ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(models), nil
}

func (r *UserRepository) Update(userID int64, updates map[string]interface{}) error {
	result := r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(userID int64, active bool, at time.Time) error {
	updates := map[string]interface{}{
		"is_active":  active,
		"updated_at": at,
	}
	if active {
		updates["deactivated_at"] = nil
	} else {
		updates["deactivated_at"] = at
	}

	result := r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}
