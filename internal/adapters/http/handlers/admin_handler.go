package handlers

import (
	"errors"

	"reqflow/internal/core/domain"
	"reqflow/internal/core/services"
	"reqflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler handles role and user administration endpoints
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// UpdateRolePermissionsBody represents the full replacement permission set
type UpdateRolePermissionsBody struct {
	PermissionIDs []string `json:"permission_ids"`
}

// UpdateUserRoleBody represents a role assignment
type UpdateUserRoleBody struct {
	RoleID string `json:"role_id"`
}

// ListRoles lists all roles with counts
// @Summary List roles
// @Description List all roles with user and permission counts
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/roles [get]
func (h *AdminHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.adminService.ListRoles(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list roles")
	}
	return response.Success(c, "Roles retrieved successfully", roles)
}

// GetRole returns one role with the full permission checkbox list
// @Summary Get role detail
// @Description Get a role with every catalog permission marked selected or not
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/roles/{id} [get]
func (h *AdminHandler) GetRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid role ID")
	}

	role, err := h.adminService.GetRole(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return response.NotFound(c, "Role not found")
		}
		return response.InternalServerError(c, "Failed to get role")
	}
	return response.Success(c, "Role retrieved successfully", role)
}

// UpdateRolePermissions replaces a role's permission set
// @Summary Update role permissions
// @Description Replace a role's permission set atomically
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Param body body UpdateRolePermissionsBody true "Replacement permission IDs"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/roles/{id}/permissions [put]
func (h *AdminHandler) UpdateRolePermissions(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid role ID")
	}

	var req UpdateRolePermissionsBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	permissionIDs := make([]uuid.UUID, 0, len(req.PermissionIDs))
	for _, raw := range req.PermissionIDs {
		permissionID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid permission ID: "+raw)
		}
		permissionIDs = append(permissionIDs, permissionID)
	}

	if err := h.adminService.UpdateRolePermissions(c.Context(), id, permissionIDs); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return response.NotFound(c, "Role not found")
		}
		return response.InternalServerError(c, "Failed to update role permissions")
	}
	return response.Success(c, "Role permissions updated successfully", nil)
}

// ListUsers lists all users
// @Summary List users
// @Description List all users with their role names
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}
	return response.Success(c, "Users retrieved successfully", users)
}

// GetUserForRoleEdit returns a user with the assignable roles
// @Summary Get user role detail
// @Description Get a user with the list of active roles available for assignment
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/role [get]
func (h *AdminHandler) GetUserForRoleEdit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	detail, err := h.adminService.GetUserForRoleEdit(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}
	return response.Success(c, "User retrieved successfully", detail)
}

// UpdateUserRole assigns a different role to a user
// @Summary Update user role
// @Description Assign a different role to a user; takes effect on the next permission check
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body UpdateUserRoleBody true "New role ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateUserRoleBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return response.BadRequest(c, "Invalid role ID")
	}

	if err := h.adminService.UpdateUserRole(c.Context(), id, roleID); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrRoleNotFound):
			return response.NotFound(c, "Role not found")
		default:
			return response.InternalServerError(c, "Failed to update user role")
		}
	}
	return response.Success(c, "User role updated successfully", nil)
}

// ToggleUserActive flips a user's active flag
// @Summary Toggle user active
// @Description Activate or deactivate a user; a deactivated user loses access immediately
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/toggle-active [post]
func (h *AdminHandler) ToggleUserActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	isActive, err := h.adminService.ToggleUserActive(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to toggle user")
	}
	return response.Success(c, "User updated successfully", fiber.Map{
		"is_active": isActive,
	})
}

// ListPermissions lists the permission catalog
// @Summary List permissions
// @Description List the full permission catalog grouped by module
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/permissions [get]
func (h *AdminHandler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.adminService.ListPermissions(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list permissions")
	}
	return response.Success(c, "Permissions retrieved successfully", perms)
}
