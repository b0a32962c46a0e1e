package services_test

import (
	"context"
	"testing"

	"reqflow/internal/core/domain"
	"reqflow/internal/pkg/permissions"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRolesReportsCounts(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db)
	createTestUser(t, db, "one@example.com", "User")
	createTestUser(t, db, "two@example.com", "User")

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)

	byName := map[string]int64{}
	for _, role := range roles {
		byName[role.Name] = role.UserCount
	}
	assert.EqualValues(t, 2, byName["User"])
	assert.EqualValues(t, 1, byName["Admin"]) // seeded dev admin
}

func TestGetRoleListsFullCatalogWithSelection(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db)
	user := createTestUser(t, db, "one@example.com", "User")

	detail, err := svc.GetRole(context.Background(), user.RoleID)
	require.NoError(t, err)
	require.Len(t, detail.Permissions, len(permissions.Catalog()))

	selected := map[string]bool{}
	for _, perm := range detail.Permissions {
		selected[perm.Name] = perm.IsSelected
	}
	assert.True(t, selected[permissions.RequestsCreate])
	assert.False(t, selected[permissions.RequestsApprove])
	assert.False(t, selected[permissions.AdminPanel])

	_, err = svc.GetRole(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestUpdateRolePermissionsReplacesAtomically(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db)
	user := createTestUser(t, db, "one@example.com", "User")

	perms, err := svc.ListPermissions(context.Background())
	require.NoError(t, err)

	var approveID uuid.UUID
	for _, perm := range perms {
		if perm.Name == permissions.RequestsApprove {
			approveID = perm.ID
		}
	}
	require.NotEqual(t, uuid.Nil, approveID)

	require.NoError(t, svc.UpdateRolePermissions(context.Background(), user.RoleID, []uuid.UUID{approveID}))

	detail, err := svc.GetRole(context.Background(), user.RoleID)
	require.NoError(t, err)
	for _, perm := range detail.Permissions {
		assert.Equal(t, perm.Name == permissions.RequestsApprove, perm.IsSelected, perm.Name)
	}

	err = svc.UpdateRolePermissions(context.Background(), uuid.New(), []uuid.UUID{approveID})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestUpdateUserRole(t *testing.T) {
	db := setupTestDB(t)
	adminSvc := newAdminService(db)
	authSvc := newAuthService(db)
	user := createTestUser(t, db, "one@example.com", "User")

	detail, err := adminSvc.GetUserForRoleEdit(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, detail.AvailableRoles, 3)

	var managerID uuid.UUID
	for _, role := range detail.AvailableRoles {
		if role.Name == "Manager" {
			managerID = role.ID
		}
	}
	require.NotEqual(t, uuid.Nil, managerID)

	require.NoError(t, adminSvc.UpdateUserRole(context.Background(), user.ID, managerID))

	// The role change is visible on the next permission check
	canApprove, err := authSvc.HasPermission(context.Background(), user.ID, permissions.RequestsApprove)
	require.NoError(t, err)
	assert.True(t, canApprove)

	err = adminSvc.UpdateUserRole(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	err = adminSvc.UpdateUserRole(context.Background(), uuid.New(), managerID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestToggleUserActiveCutsAccess(t *testing.T) {
	db := setupTestDB(t)
	adminSvc := newAdminService(db)
	authSvc := newAuthService(db)
	user := createTestUser(t, db, "one@example.com", "User")

	active, err := adminSvc.ToggleUserActive(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, active)

	names, err := authSvc.GetUserPermissions(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, names)

	active, err = adminSvc.ToggleUserActive(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, active)

	canCreate, err := authSvc.HasPermission(context.Background(), user.ID, permissions.RequestsCreate)
	require.NoError(t, err)
	assert.True(t, canCreate)
}

func TestListUsersIncludesRoleNames(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db)
	createTestUser(t, db, "one@example.com", "Manager")

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2) // seeded admin + one

	found := false
	for _, user := range users {
		if user.Email == "one@example.com" {
			found = true
			assert.Equal(t, "Manager", user.RoleName)
		}
	}
	assert.True(t, found)
}
