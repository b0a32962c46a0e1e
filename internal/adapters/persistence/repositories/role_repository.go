package repositories

import (
	"context"

	"reqflow/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// roleRepository implements RoleRepository interface
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// GetByID gets a role by ID
func (r *roleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByIDWithPermissions gets a role with its permission assignments loaded
func (r *roleRepository) GetByIDWithPermissions(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).
		Preload("RolePermissions").
		Preload("RolePermissions.Permission").
		Where("id = ?", id).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByName gets a role by its unique name
func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Exists checks if a role exists
func (r *roleRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List lists all roles ordered by name
func (r *roleRepository) List(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.db.WithContext(ctx).Order("name").Find(&roles).Error
	return roles, err
}

// ListActive lists active roles ordered by name
func (r *roleRepository) ListActive(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&roles).Error
	return roles, err
}

// CountUsers counts users assigned to a role
func (r *roleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

// CountPermissions counts permission assignments of a role
func (r *roleRepository) CountPermissions(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RolePermission{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

// ReplacePermissions replaces a role's entire permission set in one transaction
func (r *roleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		for _, permissionID := range permissionIDs {
			assignment := &models.RolePermission{
				RoleID:       roleID,
				PermissionID: permissionID,
			}
			if err := tx.Create(assignment).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
