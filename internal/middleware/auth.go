package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/config"
	"github.com/example/angkor-pos/internal/models"
	"github.com/example/angkor-pos/internal/utils"
)

const staffContextKey = "currentStaff"

// Staff identifies the acting staff member attached to the request.
type Staff struct {
	ID   uuid.UUID
	Name string
	Role string
}

// AuthMiddleware validates JWT tokens and loads the acting staff member into
// the request context before any order mutation runs.
func AuthMiddleware(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		staffID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		var user models.User
		if err := db.First(&user, "id = ?", staffID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unknown staff account")
		}

		c.Locals(staffContextKey, Staff{ID: user.ID, Name: user.Name, Role: user.Role})
		return c.Next()
	}
}

// RequireAdmin rejects requests from non-admin staff. Must run after
// AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		staff, ok := GetCurrentStaff(c)
		if !ok || staff.Role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}

// GetCurrentStaff extracts the acting staff member from context.
func GetCurrentStaff(c *fiber.Ctx) (Staff, bool) {
	value := c.Locals(staffContextKey)
	if value == nil {
		return Staff{}, false
	}

	if staff, ok := value.(Staff); ok {
		return staff, true
	}

	return Staff{}, false
}
