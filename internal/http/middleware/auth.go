package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"voicedoc/internal/auth"
	"voicedoc/internal/model"
)

// UserLocalKey stores the authenticated user in Fiber's context locals.
const UserLocalKey = "auth_user"

// Auth verifies the bearer token and stores the authenticated user in
// locals. The token is read from the Authorization header, or from the
// "token" query parameter so that browser-initiated downloads work without
// custom headers.
func Auth(svc auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing credentials")
		}

		user, err := svc.VerifyToken(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

// UserFromCtx returns the user set by Auth, or nil when the middleware did
// not run.
func UserFromCtx(c *fiber.Ctx) *model.User {
	if user, ok := c.Locals(UserLocalKey).(*model.User); ok {
		return user
	}
	return nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
