package services

import (
	"context"
	"errors"
	"log"
	"time"

	"reqflow/internal/adapters/persistence/models"
	"reqflow/internal/adapters/persistence/repositories"
	"reqflow/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService handles role and user administration
type AdminService struct {
	userRepo       repositories.UserRepository
	roleRepo       repositories.RoleRepository
	permissionRepo repositories.PermissionRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	permissionRepo repositories.PermissionRepository,
) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
	}
}

// RoleSummary represents one role in the admin role list
type RoleSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	IsActive        bool      `json:"is_active"`
	UserCount       int64     `json:"user_count"`
	PermissionCount int64     `json:"permission_count"`
}

// ListRoles lists all roles with user and permission counts
func (s *AdminService) ListRoles(ctx context.Context) ([]*RoleSummary, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*RoleSummary, 0, len(roles))
	for _, role := range roles {
		userCount, err := s.roleRepo.CountUsers(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		permissionCount, err := s.roleRepo.CountPermissions(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &RoleSummary{
			ID:              role.ID,
			Name:            role.Name,
			Description:     role.Description,
			IsActive:        role.IsActive,
			UserCount:       userCount,
			PermissionCount: permissionCount,
		})
	}
	return summaries, nil
}

// PermissionCheckbox represents one catalog permission with its selection state
type PermissionCheckbox struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Module      string    `json:"module"`
	Description string    `json:"description"`
	IsSelected  bool      `json:"is_selected"`
}

// RoleDetail represents a role with the full permission checkbox list
type RoleDetail struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	IsActive    bool                  `json:"is_active"`
	Permissions []*PermissionCheckbox `json:"permissions"`
}

// GetRole returns a role with every catalog permission marked selected or not
func (s *AdminService) GetRole(ctx context.Context, id uuid.UUID) (*RoleDetail, error) {
	role, err := s.roleRepo.GetByIDWithPermissions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, err
	}

	catalog, err := s.permissionRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	assigned := make(map[uuid.UUID]bool, len(role.RolePermissions))
	for _, rp := range role.RolePermissions {
		assigned[rp.PermissionID] = true
	}

	detail := &RoleDetail{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		IsActive:    role.IsActive,
		Permissions: make([]*PermissionCheckbox, 0, len(catalog)),
	}
	for _, perm := range catalog {
		detail.Permissions = append(detail.Permissions, &PermissionCheckbox{
			ID:          perm.ID,
			Name:        perm.Name,
			Module:      perm.Module,
			Description: perm.Description,
			IsSelected:  assigned[perm.ID],
		})
	}
	return detail, nil
}

// UpdateRolePermissions replaces a role's permission set atomically
func (s *AdminService) UpdateRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	exists, err := s.roleRepo.Exists(ctx, roleID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrRoleNotFound
	}

	if err := s.roleRepo.ReplacePermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}

	log.Printf("✅ Role permissions updated: %s (%d permissions)", roleID, len(permissionIDs))
	return nil
}

// ListUsers lists all users with their role names
func (s *AdminService) ListUsers(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}
	return responses, nil
}

// RoleSelectItem represents one selectable role
type RoleSelectItem struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserRoleDetail represents a user together with the assignable roles
type UserRoleDetail struct {
	UserID         uuid.UUID         `json:"user_id"`
	FullName       string            `json:"full_name"`
	Email          string            `json:"email"`
	RoleID         uuid.UUID         `json:"role_id"`
	AvailableRoles []*RoleSelectItem `json:"available_roles"`
}

// GetUserForRoleEdit returns a user with the list of active roles to pick from
func (s *AdminService) GetUserForRoleEdit(ctx context.Context, userID uuid.UUID) (*UserRoleDetail, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	roles, err := s.roleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	detail := &UserRoleDetail{
		UserID:         user.ID,
		FullName:       user.FullName(),
		Email:          user.Email,
		RoleID:         user.RoleID,
		AvailableRoles: make([]*RoleSelectItem, 0, len(roles)),
	}
	for _, role := range roles {
		detail.AvailableRoles = append(detail.AvailableRoles, &RoleSelectItem{ID: role.ID, Name: role.Name})
	}
	return detail, nil
}

// UpdateUserRole assigns a different role to a user
func (s *AdminService) UpdateUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	exists, err := s.roleRepo.Exists(ctx, roleID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrRoleNotFound
	}

	now := time.Now()
	user.RoleID = roleID
	user.Role = nil
	user.UpdatedAt = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ User role updated: %s", user.Email)
	return nil
}

// ToggleUserActive flips a user's active flag. Deactivated users become
// invisible to authentication and resolve to an empty permission set.
func (s *AdminService) ToggleUserActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrUserNotFound
		}
		return false, err
	}

	now := time.Now()
	user.IsActive = !user.IsActive
	user.UpdatedAt = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return false, err
	}

	log.Printf("✅ User active toggled: %s (active=%t)", user.Email, user.IsActive)
	return user.IsActive, nil
}

// ListPermissions lists the full permission catalog
func (s *AdminService) ListPermissions(ctx context.Context) ([]*models.Permission, error) {
	return s.permissionRepo.List(ctx)
}
