// Package principal resolves the authenticated (or anonymous) actor behind a
// request. The resolved principal carries a snapshot of the user's role set
// taken once per request, so every permission decision within the request
// sees a consistent view.
package principal

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/authz"
	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/web/handler"
	"github.com/inkpress/inkpress/internal/web/session"
)

const localsKey = "principal"

// Middleware resolves the session cookie into an authz.Principal and stores
// it in fiber.Locals for the handlers. Requests without a valid session
// continue as the anonymous principal; denial is up to each handler's
// permission evaluation.
func Middleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsKey, resolve(c, db))
		return c.Next()
	}
}

// Get returns the principal resolved by Middleware, or the anonymous
// principal when none was stored.
func Get(c *fiber.Ctx) authz.Principal {
	if p, ok := c.Locals(localsKey).(authz.Principal); ok {
		return p
	}

	return authz.Anonymous
}

func resolve(c *fiber.Ctx, db *gorm.DB) authz.Principal {
	sessionID := c.Cookies(handler.SessionCookieName)
	if sessionID == "" {
		return authz.Anonymous
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil {
		return authz.Anonymous
	}

	if sessData.User.ID == 0 {
		return authz.Anonymous
	}

	list, err := userrole.RolesOf(db, sessData.User.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.User.ID).Msg("failed to resolve role set")
		return authz.Anonymous
	}

	return authz.Principal{
		ID:            sessData.User.ID,
		Authenticated: true,
		Roles:         list,
	}
}
