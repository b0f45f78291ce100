package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ldworks/trainee-management/internal/accessrequest"
	accessrequestDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/accessrequest"
	userDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/user"
)

// AccessRequestRepository implements the accessrequest.Repository interface using GORM
type AccessRequestRepository struct {
	db *gorm.DB
}

func NewAccessRequestRepository(db *gorm.DB) accessrequest.Repository {
	return &AccessRequestRepository{db: db}
}

func (r *AccessRequestRepository) Create(req *accessrequest.AccessRequest) error {
	model := accessrequest.ToDataModel(req)
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	*req = *accessrequest.FromDataModel(model)
	return nil
}

func (r *AccessRequestRepository) GetByID(id int64) (*accessrequest.AccessRequest, error) {
	var model accessrequestDatamodel.AccessRequest
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accessrequest.ErrNotFound
		}
		return nil, err
	}
	return accessrequest.FromDataModel(&model), nil
}

func (r *AccessRequestRepository) List(filter accessrequest.ListFilter) ([]*accessrequest.AccessRequest, error) {
	query := r.db.Model(&accessrequestDatamodel.AccessRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var models []*accessrequestDatamodel.AccessRequest
	err := query.
		Order("submitted_at ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return accessrequest.FromDataModelSlice(models), nil
}

func (r *AccessRequestRepository) HasOpenRequestForEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&accessrequestDatamodel.AccessRequest{}).
		Where("email = ? AND status = ?", email, accessrequest.StatusPending).
		Count(&count).Error
	return count > 0, err
}

// Approve flips the pending row and inserts the user inside one transaction.
// The status guard in the WHERE clause makes concurrent reviewers lose
// cleanly instead of double-creating accounts.
func (r *AccessRequestRepository) Approve(id, reviewerID int64, comment string, newUser *accessrequest.NewUser, at time.Time) (*accessrequest.AccessRequest, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&userDatamodel.User{}).
			Where("email = ?", newUser.Email).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return accessrequest.ErrEmailTaken
		}

		user := &userDatamodel.User{
			EmployeeID:   newUser.EmployeeID,
			Email:        newUser.Email,
			Name:         newUser.Name,
			Phone:        newUser.Phone,
			PasswordHash: newUser.PasswordHash,
			Role:         newUser.Role,
			DepartmentID: newUser.DepartmentID,
			MentorCap:    newUser.MentorCap,
			IsActive:     true,
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		result := tx.Model(&accessrequestDatamodel.AccessRequest{}).
			Where("id = ? AND status = ?", id, accessrequest.StatusPending).
			Updates(map[string]interface{}{
				"status":          accessrequest.StatusApproved,
				"reviewed_at":     at,
				"reviewer_id":     reviewerID,
				"review_comment":  comment,
				"created_user_id": user.ID,
				"updated_at":      at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&accessrequestDatamodel.AccessRequest{}).
				Where("id = ?", id).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return accessrequest.ErrNotFound
			}
			return accessrequest.ErrAlreadyDecided
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

func (r *AccessRequestRepository) Reject(id, reviewerID int64, comment string, at time.Time) (*accessrequest.AccessRequest, error) {
	result := r.db.Model(&accessrequestDatamodel.AccessRequest{}).
		Where("id = ? AND status = ?", id, accessrequest.StatusPending).
		Updates(map[string]interface{}{
			"status":         accessrequest.StatusRejected,
			"reviewed_at":    at,
			"reviewer_id":    reviewerID,
			"review_comment": comment,
			"updated_at":     at,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&accessrequestDatamodel.AccessRequest{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, accessrequest.ErrNotFound
		}
		return nil, accessrequest.ErrAlreadyDecided
	}

	return r.GetByID(id)
}
