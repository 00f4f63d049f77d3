package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/service"
	"github.com/moses-maker/educore-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	return requireRole(nil, roles)
}

// RequireRoleAudited behaves like RequireRole and additionally records an
// access_denied audit entry for every rejected request.
func RequireRoleAudited(recorder service.AuditRecorder, roles ...string) fiber.Handler {
	return requireRole(recorder, roles)
}

func requireRole(recorder service.AuditRecorder, roles []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		roleValue := c.Locals("user_role")
		role := normalizeRoleValue(roleValue)
		if _, ok := allowed[role]; !ok {
			if recorder != nil {
				entry := service.AuditEntry{
					Action:        models.AuditActionAccessDenied,
					Description:   fmt.Sprintf("%s %s", c.Method(), c.Path()),
					IPAddress:     clientIP(c),
					UserAgent:     c.Get(fiber.HeaderUserAgent),
					RequestMethod: c.Method(),
					RequestPath:   c.Path(),
					Success:       false,
					ErrorMessage:  "insufficient permissions",
					ExtraData:     map[string]interface{}{"role": role},
				}
				if userID := userIDFromLocals(c); userID != nil {
					entry.UserID = userID
				}
				recorder.Record(c.UserContext(), entry)
			}
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
