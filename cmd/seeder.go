package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/ldworks/trainee-management/internal/authz"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with departments and a bootstrap admin for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"mentor_assignments", "progress_reports", "internship_requests",
				"access_requests", "users", "departments",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		departments := []struct {
			Name string
			Code string
		}{
			{"Engineering", "ENG"},
			{"Data & Analytics", "DAT"},
			{"Product Design", "DSN"},
			{"Operations", "OPS"},
			{"Learning & Development", "LND"},
		}

		for _, d := range departments {
			var exists int
			row := db.Raw("SELECT 1 FROM departments WHERE code = ?", d.Code).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO departments (name, code, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())", d.Name, d.Code).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", d.Code, err)
			}
			fmt.Printf("Seeded department: %s (%s)\n", d.Name, d.Code)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		adminEmail := "admin@tams.local"
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists:", adminEmail)
		} else {
			if err := db.Exec(
				"INSERT INTO users (employee_id, email, name, password_hash, role, mentor_capacity, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 0, true, now(), now())",
				"EMP-0001", adminEmail, "System Admin", string(hash), authz.RoleAdmin,
			).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		}

		sampleUsers := []struct {
			EmployeeID string
			Email      string
			Name       string
			Role       string
			DeptCode   string
			MentorCap  int
		}{
			{"EMP-0002", "hod@tams.local", "Head of L&D", authz.RoleLDHoD, "LND", 0},
			{"EMP-0003", "coordinator@tams.local", "L&D Coordinator", authz.RoleLDCoordinator, "LND", 0},
			{"EMP-0004", "eng.hod@tams.local", "Engineering HoD", authz.RoleDepartmentHoD, "ENG", 0},
			{"EMP-0005", "mentor@tams.local", "Engineering Mentor", authz.RoleMentor, "ENG", 3},
		}

		for _, u := range sampleUsers {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}

			var deptID int64
			if err := db.Raw("SELECT id FROM departments WHERE code = ?", u.DeptCode).Row().Scan(&deptID); err != nil {
				log.Fatalf("department not found for %s: %v", u.Email, err)
			}

			if err := db.Exec(
				"INSERT INTO users (employee_id, email, name, password_hash, role, department_id, mentor_capacity, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, true, now(), now())",
				u.EmployeeID, u.Email, u.Name, string(hash), u.Role, deptID, u.MentorCap,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded user: %s (%s)\n", u.Email, u.Role)
		}

		fmt.Println("Seeding complete")
	},
}
