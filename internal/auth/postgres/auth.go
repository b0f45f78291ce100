package postgres

import (
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/ldworks/trainee-management/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, string, error) {
	var passwordHash string
	var userID string
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("user not found")
		}
		return "", "", err
	}
	return passwordHash, userID, nil
}

func (r *Repository) GetActor(userID int64) (*auth.Actor, error) {
	var actor auth.Actor

	query := `SELECT id, employee_id, email, name, role, department_id
	          FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	var deptID sql.NullInt64
	if err := row.Scan(&actor.ID, &actor.EmployeeID, &actor.Email, &actor.Name, &actor.Role, &deptID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	if deptID.Valid {
		actor.DepartmentID = &deptID.Int64
	}

	return &actor, nil
}
