package middleware

import (
	"strings"

	"github.com/civic-reports/backend/internal/auth"
	"github.com/civic-reports/backend/internal/config"
	"github.com/civic-reports/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CtxStaffID    = "staff_id"
	CtxRole       = "role"
	CtxDepartment = "department"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxStaffID, claims.StaffID)
		c.Locals(CtxRole, claims.Role)
		c.Locals(CtxDepartment, claims.Department)

		return c.Next()
	}
}

func GetStaffID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(CtxStaffID).(int64)
	return id
}

func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals(CtxRole).(string)
	return role
}

func GetDepartment(c *fiber.Ctx) string {
	dept, _ := c.Locals(CtxDepartment).(string)
	return dept
}

// SupervisorMiddleware restricts a route to supervisors and admins.
func SupervisorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role != models.RoleSupervisor && role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "supervisor access required"})
		}
		return c.Next()
	}
}

// RequestMeta collects the request context recorded in audit entry metadata.
func RequestMeta(c *fiber.Ctx) map[string]any {
	reqID, _ := c.Locals(CtxRequestID).(string)
	return map[string]any{
		"ip":         c.IP(),
		"user_agent": c.Get("User-Agent"),
		"request_id": reqID,
	}
}
