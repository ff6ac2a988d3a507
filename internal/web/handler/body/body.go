// Package body exposes the post body endpoints.
package body

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/config"
	postctl "github.com/inkpress/inkpress/internal/db/controller/post"
	"github.com/inkpress/inkpress/internal/db/models"
	"github.com/inkpress/inkpress/internal/web/handler"
)

const (
	// Path is the base path of the body endpoints.
	Path = "/bodies"
)

// Service is the body handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the body handler.
var Handler = Service{}

// Init initializes the body handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Post)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Put)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

type view struct {
	ID   uint64 `json:"id"`
	Text string `json:"text"`
}

func toView(b *models.Body) view {
	return view{ID: b.ID, Text: b.Text}
}

// List handles listing all bodies.
func (s *Service) List(c *fiber.Ctx) error {
	bodies, err := postctl.ListBodies(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bodies")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	out := make([]view, 0, len(bodies))
	for i := range bodies {
		out = append(out, toView(&bodies[i]))
	}

	return c.JSON(out)
}

// Get handles the body detail view.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid body id"})
	}

	body, err := postctl.GetBody(s.db, id)
	if err != nil {
		return s.fail(c, id, err, "failed to get body")
	}

	return c.JSON(toView(body))
}

// Post handles body creation.
func (s *Service) Post(c *fiber.Ctx) error {
	var in struct {
		Text string `json:"text"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	created, err := postctl.CreateBody(s.db, in.Text)
	if err != nil {
		log.Error().Err(err).Msg("failed to create body")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": created.ID})
}

// Put handles replacing a body's text.
func (s *Service) Put(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid body id"})
	}

	var in struct {
		Text string `json:"text"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	updated, err := postctl.UpdateBody(s.db, id, in.Text)
	if err != nil {
		return s.fail(c, id, err, "failed to update body")
	}

	return c.JSON(toView(updated))
}

// Delete handles body deletion. Posts referencing the body follow through the
// cascade constraint.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid body id"})
	}

	if err := postctl.DeleteBody(s.db, id); err != nil {
		return s.fail(c, id, err, "failed to delete body")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) fail(c *fiber.Ctx, id uint64, err error, logMsg string) error {
	if errors.Is(err, postctl.ErrBodyNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "body not found"})
	}

	log.Error().Err(err).Uint64("body_id", id).Msg(logMsg)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": "internal server error",
	})
}
