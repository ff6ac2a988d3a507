// Package role exposes the grant and revoke endpoints of the principal-role
// store. Both operations are idempotent and answer with the user's resulting
// role set.
package role

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/roles"
	"github.com/inkpress/inkpress/internal/web/handler"
)

const (
	// GivePath is the path of the grant endpoint.
	GivePath = "/users/:id/roles/give"
	// RevokePath is the path of the revoke endpoint.
	RevokePath = "/users/:id/roles/revoke"

	// EmptyRoleMsg is the error answered when the role field is missing.
	EmptyRoleMsg = "Error: Got empty role"
	// InvalidRoleMsg is the error answered for an unknown role literal.
	InvalidRoleMsg = "Error: Got invalid role"
)

// Service is the role handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the role handler.
var Handler = Service{}

// Init initializes the role handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	app.Post(GivePath, s.Give)
	app.Post(RevokePath, s.Revoke)

	return nil
}

// Give grants a role to the user.
func (s *Service) Give(c *fiber.Ctx) error {
	return s.apply(c, userrole.Grant)
}

// Revoke removes a role from the user.
func (s *Service) Revoke(c *fiber.Ctx) error {
	return s.apply(c, userrole.Revoke)
}

func (s *Service) apply(c *fiber.Ctx, op func(*gorm.DB, uint64, roles.Role) (roles.List, error)) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid user id"})
	}

	var in struct {
		Role string `json:"role"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	if in.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"role": EmptyRoleMsg})
	}

	role, err := roles.Parse(in.Role)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"role": InvalidRoleMsg})
	}

	list, err := op(s.db, userID, role)
	if err != nil {
		if errors.Is(err, userrole.ErrUnknownUser) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "user not found"})
		}

		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to mutate role set")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	return c.JSON(fiber.Map{"roles": list.Strings()})
}
