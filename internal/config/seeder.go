package config

import (
	"log"

	"reqflow/internal/adapters/persistence/models"
	"reqflow/internal/pkg/password"
	"reqflow/internal/pkg/permissions"

	"gorm.io/gorm"
)

// Role names seeded at startup
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleUser    = "User"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Seeding is idempotent: existing rows are left
// alone so admin edits to role permissions survive restarts.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedPermissions(); err != nil {
		return err
	}
	if err := s.seedRoles(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedPermissions inserts any catalog permissions missing from the table.
// The catalog is closed; nothing is ever removed here.
func (s *Seeder) seedPermissions() error {
	for _, def := range permissions.Catalog() {
		var count int64
		if err := s.db.Model(&models.Permission{}).Where("name = ?", def.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		perm := &models.Permission{
			Name:        def.Name,
			Module:      def.Module,
			Description: def.Description,
		}
		if err := s.db.Create(perm).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedRoles creates the three default roles with their permission sets.
// A role that already exists is not touched.
func (s *Seeder) seedRoles() error {
	defaults := []struct {
		name        string
		description string
		permissions []string
	}{
		{
			name:        RoleAdmin,
			description: "Full access to every module",
			permissions: allPermissionNames(),
		},
		{
			name:        RoleManager,
			description: "Reviews and decides requests across the organization",
			permissions: []string{
				permissions.RequestsCreate,
				permissions.RequestsEdit,
				permissions.RequestsDelete,
				permissions.RequestsViewOwn,
				permissions.RequestsViewAll,
				permissions.RequestsApprove,
				permissions.RequestsReject,
				permissions.DashboardViewStats,
			},
		},
		{
			name:        RoleUser,
			description: "Creates and manages own requests",
			permissions: []string{
				permissions.RequestsCreate,
				permissions.RequestsEdit,
				permissions.RequestsDelete,
				permissions.RequestsViewOwn,
				permissions.DashboardViewStats,
			},
		},
	}

	for _, def := range defaults {
		var count int64
		if err := s.db.Model(&models.Role{}).Where("name = ?", def.name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		role := &models.Role{
			Name:        def.name,
			Description: def.description,
			IsActive:    true,
		}
		if err := s.db.Create(role).Error; err != nil {
			return err
		}

		for _, permName := range def.permissions {
			var perm models.Permission
			if err := s.db.Where("name = ?", permName).First(&perm).Error; err != nil {
				return err
			}
			assignment := &models.RolePermission{
				RoleID:       role.ID,
				PermissionID: perm.ID,
			}
			if err := s.db.Create(assignment).Error; err != nil {
				return err
			}
		}

		log.Printf("✅ Role seeded: %s (%d permissions)", def.name, len(def.permissions))
	}
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if any user already exists
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	var adminRole models.Role
	if err := s.db.Where("name = ?", RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		FirstName: "System",
		LastName:  "Administrator",
		Email:     "admin@reqflow.local",
		Password:  hashedPassword,
		RoleID:    adminRole.ID,
		IsActive:  true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

func allPermissionNames() []string {
	catalog := permissions.Catalog()
	names := make([]string, 0, len(catalog))
	for _, def := range catalog {
		names = append(names, def.Name)
	}
	return names
}
