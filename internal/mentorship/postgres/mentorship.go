package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ldworks/trainee-management/internal/authz"
	internshipDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/internship"
	mentorshipDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/mentorship"
	userDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/user"
	"github.com/ldworks/trainee-management/internal/internship"
	"github.com/ldworks/trainee-management/internal/mentorship"
)

// MentorshipRepository implements the mentorship.RepositoryAPI interface using GORM
type MentorshipRepository struct {
	db *gorm.DB
}

func NewMentorshipRepository(db *gorm.DB) mentorship.RepositoryAPI {
	return &MentorshipRepository{db: db}
}

// AssignWithinCapacity runs the whole assignment as one transaction: the
// mentor lookup, the load count against capacity, the assignment insert and
// the version-gated status flip on the request. If any step fails nothing is
// written.
func (r *MentorshipRepository) AssignWithinCapacity(requestID, expectedVersion, mentorID, assignedBy, departmentID int64) (*mentorship.Assignment, error) {
	var created mentorshipDatamodel.MentorAssignment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var mentor userDatamodel.User
		err := tx.Where("id = ? AND role = ? AND department_id = ? AND is_active = ?",
			mentorID, authz.RoleMentor, departmentID, true).
			First(&mentor).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return mentorship.ErrMentorNotFound
			}
			return err
		}

		// Touching the mentor row takes a row-level write lock, so
		// concurrent assignments to the same mentor serialize here and
		// the load count below always includes the earlier winner.
		if err := tx.Model(&userDatamodel.User{}).
			Where("id = ?", mentorID).
			Update("updated_at", time.Now()).Error; err != nil {
			return err
		}

		var activeCount int64
		if err := tx.Model(&mentorshipDatamodel.MentorAssignment{}).
			Where("mentor_id = ? AND is_active = ?", mentorID, true).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount >= int64(mentor.MentorCap) {
			return mentorship.ErrCapacityExceeded
		}

		created = mentorshipDatamodel.MentorAssignment{
			RequestID:  requestID,
			MentorID:   mentorID,
			AssignedBy: assignedBy,
			IsActive:   true,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&internshipDatamodel.InternshipRequest{}).
			Where("id = ? AND version = ? AND status = ?",
				requestID, expectedVersion, internship.StatusApproved).
			Updates(map[string]interface{}{
				"status":             internship.StatusMentorAssigned,
				"assigned_mentor_id": mentorID,
				"version":            expectedVersion + 1,
				"updated_at":         now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var current internshipDatamodel.InternshipRequest
			if err := tx.Where("id = ?", requestID).First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return internship.ErrNotFound
				}
				return err
			}
			if current.Status != internship.StatusApproved {
				return mentorship.ErrRequestNotAssignable
			}
			return mentorship.ErrRequestConflict
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return mentorship.FromDataModel(&created), nil
}

// ReleaseAndRevert deactivates the active assignment and moves the request
// back to the assignable state in one transaction, under the same version
// gate as the assignment itself. Used when a department head swaps mentors.
func (r *MentorshipRepository) ReleaseAndRevert(requestID, expectedVersion int64, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&internshipDatamodel.InternshipRequest{}).
			Where("id = ? AND version = ? AND status = ?",
				requestID, expectedVersion, internship.StatusMentorAssigned).
			Updates(map[string]interface{}{
				"status":             internship.StatusApproved,
				"assigned_mentor_id": nil,
				"version":            expectedVersion + 1,
				"updated_at":         at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var current internshipDatamodel.InternshipRequest
			if err := tx.Where("id = ?", requestID).First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return internship.ErrNotFound
				}
				return err
			}
			if current.Status != internship.StatusMentorAssigned {
				return mentorship.ErrRequestNotReleasable
			}
			return mentorship.ErrRequestConflict
		}

		release := tx.Model(&mentorshipDatamodel.MentorAssignment{}).
			Where("request_id = ? AND is_active = ?", requestID, true).
			Updates(map[string]interface{}{
				"is_active":   false,
				"released_at": at,
				"updated_at":  at,
			})
		if release.Error != nil {
			return release.Error
		}
		if release.RowsAffected == 0 {
			return mentorship.ErrAssignmentNotFound
		}
		return nil
	})
}

func (r *MentorshipRepository) GetActiveByRequestID(requestID int64) (*mentorship.Assignment, error) {
	var model mentorshipDatamodel.MentorAssignment
	err := r.db.Where("request_id = ? AND is_active = ?", requestID, true).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mentorship.ErrAssignmentNotFound
		}
		return nil, err
	}
	return mentorship.FromDataModel(&model), nil
}

func (r *MentorshipRepository) Acknowledge(requestID, mentorID int64, at time.Time) error {
	result := r.db.Model(&mentorshipDatamodel.MentorAssignment{}).
		Where("request_id = ? AND mentor_id = ? AND is_active = ? AND acknowledged_at IS NULL",
			requestID, mentorID, true).
		Updates(map[string]interface{}{
			"acknowledged_at": at,
			"updated_at":      at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mentorship.ErrAssignmentNotFound
	}
	return nil
}

func (r *MentorshipRepository) ReleaseActive(requestID int64, at time.Time) error {
	result := r.db.Model(&mentorshipDatamodel.MentorAssignment{}).
		Where("request_id = ? AND is_active = ?", requestID, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"released_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mentorship.ErrAssignmentNotFound
	}
	return nil
}

func (r *MentorshipRepository) ListForMentor(mentorID int64) ([]*mentorship.Assignment, error) {
	var models []*mentorshipDatamodel.MentorAssignment
	err := r.db.Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mentorship.FromDataModelSlice(models), nil
}

func (r *MentorshipRepository) MentorLoads(departmentID int64) ([]*mentorship.MentorLoad, error) {
	var loads []*mentorship.MentorLoad
	err := r.db.Model(&userDatamodel.User{}).
		Select("users.id AS mentor_id, users.name, users.email, users.mentor_capacity AS capacity, COUNT(mentor_assignments.id) AS active_count").
		Joins("LEFT JOIN mentor_assignments ON mentor_assignments.mentor_id = users.id AND mentor_assignments.is_active = ?", true).
		Where("users.role = ? AND users.department_id = ? AND users.is_active = ?",
			authz.RoleMentor, departmentID, true).
		Group("users.id, users.name, users.email, users.mentor_capacity").
		Order("users.name ASC").
		Scan(&loads).Error
	return loads, err
}

func (r *MentorshipRepository) GetMentorEmail(mentorID int64) (string, error) {
	var mentor userDatamodel.User
	err := r.db.Select("email").Where("id = ?", mentorID).First(&mentor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", mentorship.ErrMentorNotFound
		}
		return "", err
	}
	return mentor.Email, nil
}
