package services_test

import (
	"context"
	"testing"

	"reqflow/internal/adapters/persistence/models"
	"reqflow/internal/core/domain"
	"reqflow/internal/core/services"
	"reqflow/internal/pkg/permissions"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAssignsDefaultRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	result, err := svc.Register(context.Background(), &services.RegisterInput{
		FirstName: "Alice",
		LastName:  "Nguyen",
		Email:     "alice@example.com",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Nguyen", result.User.FullName)
	assert.Equal(t, services.DefaultRoleName, result.User.RoleName)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	// Self-registration never grants approval rights
	canApprove, err := svc.HasPermission(context.Background(), result.User.ID, permissions.RequestsApprove)
	require.NoError(t, err)
	assert.False(t, canApprove)
}

func TestRegisterRejectsDuplicateEmailAndShortPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	input := &services.RegisterInput{
		FirstName: "Alice",
		LastName:  "Nguyen",
		Email:     "alice@example.com",
		Password:  "correct-horse",
	}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = svc.Register(context.Background(), &services.RegisterInput{
		FirstName: "Bob",
		LastName:  "Short",
		Email:     "bob@example.com",
		Password:  "short",
	})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	createTestUserWithPassword(t, db, "alice@example.com", "User", "correct-horse")

	result, err := svc.Login(context.Background(), &services.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	_, err = svc.Login(context.Background(), &services.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// An unknown email reads the same as a bad password
	_, err = svc.Login(context.Background(), &services.LoginInput{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRefusesInactiveUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	user := createTestUserWithPassword(t, db, "alice@example.com", "User", "correct-horse")

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), &services.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestPermissionResolutionIsFresh(t *testing.T) {
	db := setupTestDB(t)
	authSvc := newAuthService(db)
	adminSvc := newAdminService(db)
	user := createTestUser(t, db, "alice@example.com", "User")

	allowed, err := authSvc.HasPermission(context.Background(), user.ID, permissions.RequestsCreate)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Strip the role down to nothing; the very next check must see it
	require.NoError(t, adminSvc.UpdateRolePermissions(context.Background(), user.RoleID, []uuid.UUID{}))

	allowed, err = authSvc.HasPermission(context.Background(), user.ID, permissions.RequestsCreate)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestPermissionsOfInactiveUserAreEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	user := createTestUser(t, db, "alice@example.com", "Admin")

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	names, err := svc.GetUserPermissions(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, names)

	// Same for a user that never existed
	names, err = svc.GetUserPermissions(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRefreshTokenRotation(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	createTestUserWithPassword(t, db, "alice@example.com", "User", "correct-horse")

	login, err := svc.Login(context.Background(), &services.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token was revoked by the rotation
	_, err = svc.RefreshToken(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	createTestUserWithPassword(t, db, "alice@example.com", "User", "correct-horse")

	login, err := svc.Login(context.Background(), &services.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))

	_, err = svc.RefreshToken(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	user := createTestUserWithPassword(t, db, "alice@example.com", "User", "correct-horse")

	first, err := svc.Login(context.Background(), &services.LoginInput{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), &services.LoginInput{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(context.Background(), user.ID))

	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	_, err = svc.RefreshToken(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestSeededRolesCarryExpectedPermissions(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@reqflow.local").First(&admin).Error)

	names, err := svc.GetUserPermissions(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Len(t, names, len(permissions.Catalog()))

	manager := createTestUser(t, db, "manager@example.com", "Manager")
	canApprove, err := svc.HasPermission(context.Background(), manager.ID, permissions.RequestsApprove)
	require.NoError(t, err)
	assert.True(t, canApprove)
	canAdmin, err := svc.HasPermission(context.Background(), manager.ID, permissions.AdminPanel)
	require.NoError(t, err)
	assert.False(t, canAdmin)
}
