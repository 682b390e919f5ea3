package middleware

import (
	"grayco-suite/internal/constants"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthorizePermission lets the request through only when the session operator's role holds permission.
// A permission missing from PermissionRoles is a wiring bug and answers 500.
func AuthorizePermission(permission string) fiber.Handler {
	if _, ok := constants.PermissionRoles[permission]; !ok {
		log.Error().Str("permission", permission).Msg("authorize: permission has no roles")
	}
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if len(constants.PermissionRoles[permission]) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		role := RoleOf(user)
		if !constants.AllowedRole(permission, role) {
			log.Info().Str("trace_id", GetTraceID(c)).Str("role", role).Str("permission", permission).
				Str("path", c.Path()).Msg("authorize: denied")
			return response.Forbidden(c, "Operator is not allowed to perform this action")
		}
		return c.Next()
	}
}

// RoleOf reads the role out of a session user. Anything unreadable is "".
func RoleOf(user interface{}) string {
	switch u := user.(type) {
	case map[string]interface{}:
		r, _ := u["role"].(string)
		return r
	case SessionUser:
		return u.Role
	}
	return ""
}
