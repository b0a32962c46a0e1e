package routes

import (
	"reqflow/internal/adapters/http/handlers"
	"reqflow/internal/adapters/http/middleware"
	"reqflow/internal/adapters/persistence/repositories"
	"reqflow/internal/config"
	"reqflow/internal/core/services"
	"reqflow/internal/pkg/permissions"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	permissionRepo := repositories.NewPermissionRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, roleRepo, refreshTokenRepo, cfg)
	requestService := services.NewRequestService(requestRepo, userRepo)
	adminService := services.NewAdminService(userRepo, roleRepo, permissionRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	requestHandler := handlers.NewRequestHandler(requestService, authService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Request lifecycle routes (authenticated, permission-gated per operation)
	requestRoutes := apiV1.Group("/requests")
	requestRoutes.Use(middleware.AuthMiddleware(cfg))
	setupRequestRoutes(requestRoutes, requestHandler, authService)

	// Admin routes (authenticated + Admin.Panel)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.RequirePermission(authService, permissions.AdminPanel))
	setupAdminRoutes(adminRoutes, adminHandler, authService)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate-limited harder than the rest of the API)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupRequestRoutes configures request lifecycle routes. Every route carries
// exactly the catalog permission the operation needs; the handler never
// re-checks what the gate already guaranteed.
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler, authService *services.AuthService) {
	router.Get("/", middleware.RequirePermission(authService, permissions.RequestsViewOwn), handler.List)
	router.Get("/dashboard", middleware.RequirePermission(authService, permissions.DashboardViewStats), handler.Dashboard)
	router.Get("/:id", middleware.RequirePermission(authService, permissions.RequestsViewOwn), handler.GetByID)

	router.Post("/", middleware.RequirePermission(authService, permissions.RequestsCreate), handler.Create)
	router.Put("/:id", middleware.RequirePermission(authService, permissions.RequestsEdit), handler.Update)
	router.Delete("/:id", middleware.RequirePermission(authService, permissions.RequestsDelete), handler.Delete)

	router.Post("/:id/submit", middleware.RequirePermission(authService, permissions.RequestsCreate), handler.Submit)
	router.Post("/:id/approve", middleware.RequirePermission(authService, permissions.RequestsApprove), handler.Approve)
	router.Post("/:id/reject", middleware.RequirePermission(authService, permissions.RequestsReject), handler.Reject)
}

// setupAdminRoutes configures role and user administration routes.
// The Admin.Panel gate on the group stacks with the per-route gates.
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler, authService *services.AuthService) {
	// Role management
	router.Get("/roles", middleware.RequirePermission(authService, permissions.RolesManage), handler.ListRoles)
	router.Get("/roles/:id", middleware.RequirePermission(authService, permissions.RolesManage), handler.GetRole)
	router.Put("/roles/:id/permissions", middleware.RequirePermission(authService, permissions.RolesManage), handler.UpdateRolePermissions)

	// User management
	router.Get("/users", middleware.RequirePermission(authService, permissions.UsersViewAll), handler.ListUsers)
	router.Get("/users/:id/role", middleware.RequirePermission(authService, permissions.UsersEdit), handler.GetUserForRoleEdit)
	router.Put("/users/:id/role", middleware.RequirePermission(authService, permissions.UsersEdit), handler.UpdateUserRole)
	router.Post("/users/:id/toggle-active", middleware.RequirePermission(authService, permissions.UsersEdit), handler.ToggleUserActive)

	// Permission catalog (read-only)
	router.Get("/permissions", middleware.RequirePermission(authService, permissions.RolesManage), handler.ListPermissions)
}
