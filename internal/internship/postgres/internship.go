package postgres

import (
	"errors"

	"gorm.io/gorm"

	internshipDatamodel "github.com/ldworks/trainee-management/internal/core/datamodel/internship"
	"github.com/ldworks/trainee-management/internal/internship"
)

// InternshipRepository implements the internship.Repository interface using GORM
type InternshipRepository struct {
	db *gorm.DB
}

func NewInternshipRepository(db *gorm.DB) internship.Repository {
	return &InternshipRepository{db: db}
}

func (r *InternshipRepository) Create(req *internship.Request) error {
	model := internship.ToDataModel(req)
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	*req = *internship.FromDataModel(model)
	return nil
}

func (r *InternshipRepository) GetByID(id int64) (*internship.Request, error) {
	var model internshipDatamodel.InternshipRequest
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internship.ErrNotFound
		}
		return nil, err
	}
	return internship.FromDataModel(&model), nil
}

func (r *InternshipRepository) List(filter internship.ListFilter) ([]*internship.Request, error) {
	query := r.db.Model(&internshipDatamodel.InternshipRequest{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.SubmittedBy != nil {
		query = query.Where("submitted_by = ?", *filter.SubmittedBy)
	}
	if filter.MentorID != nil {
		query = query.Where("assigned_mentor_id = ?", *filter.MentorID)
	}

	var models []*internshipDatamodel.InternshipRequest
	err := query.
		Order("submitted_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return internship.FromDataModelSlice(models), nil
}

// UpdateStatus applies the updates only when the stored version still matches.
// A zero rows-affected result means either a version conflict or a deleted
// row; a follow-up lookup tells them apart.
func (r *InternshipRepository) UpdateStatus(id, expectedVersion int64, updates map[string]interface{}) error {
	updates["version"] = expectedVersion + 1

	result := r.db.Model(&internshipDatamodel.InternshipRequest{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&internshipDatamodel.InternshipRequest{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return internship.ErrNotFound
		}
		return internship.ErrStaleState
	}

	return nil
}

func (r *InternshipRepository) CreateReport(report *internship.Report) error {
	model := &internshipDatamodel.ProgressReport{
		RequestID:   report.RequestID,
		SubmittedBy: report.SubmittedBy,
		Title:       report.Title,
		Body:        report.Body,
		SubmittedAt: report.SubmittedAt,
	}
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	*report = *internship.ReportFromDataModel(model)
	return nil
}

func (r *InternshipRepository) CountReports(requestID int64) (int64, error) {
	var count int64
	err := r.db.Model(&internshipDatamodel.ProgressReport{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count, err
}

func (r *InternshipRepository) ListReports(requestID int64) ([]*internship.Report, error) {
	var models []*internshipDatamodel.ProgressReport
	err := r.db.Where("request_id = ?", requestID).
		Order("submitted_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	reports := make([]*internship.Report, len(models))
	for i, m := range models {
		reports[i] = internship.ReportFromDataModel(m)
	}
	return reports, nil
}
