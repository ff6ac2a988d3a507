// Package register provides the anonymous-only sign-up endpoint.
package register

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/authz"
	"github.com/inkpress/inkpress/internal/config"
	userctl "github.com/inkpress/inkpress/internal/db/controller/user"
	"github.com/inkpress/inkpress/internal/validate"
	"github.com/inkpress/inkpress/internal/web/handler"
	"github.com/inkpress/inkpress/internal/web/middleware/principal"
)

const (
	// Path is the path to the registration endpoint.
	Path = "/register"
)

// Service is the registration handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the registration handler.
var Handler = Service{}

// Init initializes the registration handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	app.Post(Path, s.Post)

	return nil
}

// Post handles the sign-up request. Registration is an anonymous-only
// action: an authenticated principal is always denied.
func (s *Service) Post(c *fiber.Ctx) error {
	caller := principal.Get(c)

	decision := authz.Evaluate(caller, authz.ActionCreate, authz.ResourceRegistration, authz.Context{})
	if !decision.Allowed() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "already authenticated",
		})
	}

	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	if err := validate.Username(in.Username); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"username": err.Error()})
	}

	if err := validate.Email(in.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"email": err.Error()})
	}

	if err := validate.Password(in.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"password": err.Error()})
	}

	created, err := userctl.Create(s.db, in.Username, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, userctl.ErrUserExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"username": err.Error()})
		}

		log.Error().Err(err).Msg("failed to create user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": created.ID})
}
