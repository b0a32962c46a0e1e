package services_test

import (
	"fmt"
	"strings"
	"testing"

	"reqflow/internal/adapters/persistence/models"
	"reqflow/internal/adapters/persistence/repositories"
	"reqflow/internal/config"
	"reqflow/internal/core/services"
	"reqflow/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database, migrates the schema and runs
// the startup seeders (permission catalog, default roles, dev admin).
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	require.NoError(t, config.NewSeeder(db).Run())

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newAuthService(db *gorm.DB) *services.AuthService {
	return services.NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRoleRepository(db),
		repositories.NewRefreshTokenRepository(db),
		testConfig(),
	)
}

func newRequestService(db *gorm.DB) *services.RequestService {
	return services.NewRequestService(
		repositories.NewRequestRepository(db),
		repositories.NewUserRepository(db),
	)
}

func newAdminService(db *gorm.DB) *services.AdminService {
	return services.NewAdminService(
		repositories.NewUserRepository(db),
		repositories.NewRoleRepository(db),
		repositories.NewPermissionRepository(db),
	)
}

// createTestUser inserts an active user holding one of the seeded roles.
func createTestUser(t *testing.T, db *gorm.DB, email, roleName string) *models.User {
	t.Helper()

	var role models.Role
	require.NoError(t, db.Where("name = ?", roleName).First(&role).Error)

	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "not-a-real-hash",
		RoleID:    role.ID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	user.Role = &role
	return user
}

// createTestUserWithPassword is createTestUser with a real bcrypt hash,
// for login round trips.
func createTestUserWithPassword(t *testing.T, db *gorm.DB, email, roleName, plain string) *models.User {
	t.Helper()

	user := createTestUser(t, db, email, roleName)
	hash, err := password.Hash(plain)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("password", hash).Error)
	user.Password = hash
	return user
}

// historyCount counts audit entries recorded for one request.
func historyCount(t *testing.T, db *gorm.DB, requestID interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.RequestStatusHistory{}).
		Where("request_id = ?", requestID).Count(&count).Error)
	return count
}
