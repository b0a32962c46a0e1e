package middleware

import (
	"strings"

	"reqflow/internal/config"
	"reqflow/internal/core/services"
	"reqflow/internal/pkg/jwt"
	"reqflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("fullName", claims.FullName)

		return c.Next()
	}
}

// RequirePermission gates a route behind one catalog permission. The check is
// resolved against the store on every call, so a revoked permission takes
// effect immediately. Stacking multiple RequirePermission handlers on one
// route requires all of them. Authorization completes before the handler runs;
// on denial nothing executes.
func RequirePermission(authService *services.AuthService, permissionName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uuid.UUID)
		if !ok {
			return response.Unauthorized(c, "Access token required")
		}

		allowed, err := authService.HasPermission(c.Context(), userID, permissionName)
		if err != nil {
			return response.InternalServerError(c, "Permission check failed")
		}
		if !allowed {
			return response.Forbidden(c, "You don't have permission to perform this action")
		}

		return c.Next()
	}
}
