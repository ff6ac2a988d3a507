// Package rolerequest exposes the role-request workflow endpoints: an
// ownership-gated CRUD surface plus the elevated-only status transition.
package rolerequest

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/config"
	requestctl "github.com/inkpress/inkpress/internal/db/controller/rolerequest"
	"github.com/inkpress/inkpress/internal/db/models"
	"github.com/inkpress/inkpress/internal/roles"
	"github.com/inkpress/inkpress/internal/web/handler"
	"github.com/inkpress/inkpress/internal/web/handler/role"
	"github.com/inkpress/inkpress/internal/web/middleware/principal"
)

const (
	// Path is the base path of the role-request endpoints.
	Path = "/role-requests"
)

// Service is the role-request handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the role-request handler.
var Handler = Service{}

// Init initializes the role-request handler.
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
		router.Post("/:id/transition", s.Transition)
	})

	return nil
}

// view is the public representation of a role request.
type view struct {
	ID           uint64 `json:"id"`
	Date         string `json:"date"`
	User         uint64 `json:"user"`
	ExpectedRole string `json:"expected_role"`
	Status       string `json:"status"`
	Message      string `json:"message"`
}

func toView(r *models.RoleRequest) view {
	return view{
		ID:           r.ID,
		Date:         r.Date.UTC().Format(time.RFC3339),
		User:         r.UserID,
		ExpectedRole: string(r.ExpectedRole),
		Status:       string(r.Status),
		Message:      r.Message,
	}
}

// List handles listing the requests visible to the caller: all of them for a
// superuser, only the caller's own otherwise.
func (s *Service) List(c *fiber.Ctx) error {
	caller := principal.Get(c)

	requests, err := requestctl.ListFor(s.db, caller)
	if err != nil {
		if errors.Is(err, requestctl.ErrNotAuthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "authentication required",
			})
		}

		log.Error().Err(err).Msg("failed to list role requests")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	out := make([]view, 0, len(requests))
	for i := range requests {
		out = append(out, toView(&requests[i]))
	}

	return c.JSON(out)
}

// Post handles opening a new request. The owner and the opened status are
// injected server-side; client-supplied values for either are ignored.
func (s *Service) Post(c *fiber.Ctx) error {
	caller := principal.Get(c)

	var in struct {
		ExpectedRole string `json:"expected_role"`
		Message      string `json:"message"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	if in.ExpectedRole == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"expected_role": role.EmptyRoleMsg})
	}

	expectedRole, err := roles.Parse(in.ExpectedRole)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"expected_role": role.InvalidRoleMsg})
	}

	created, err := requestctl.Create(s.db, caller, expectedRole, in.Message)
	if err != nil {
		if errors.Is(err, requestctl.ErrNotAuthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "authentication required",
			})
		}

		log.Error().Err(err).Msg("failed to create role request")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": created.ID})
}

// Get handles the request detail view, visible to the owner and to admin or
// superuser principals.
func (s *Service) Get(c *fiber.Ctx) error {
	caller := principal.Get(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request id"})
	}

	request, err := requestctl.Get(s.db, id, caller)
	if err != nil {
		return s.fail(c, id, err, "failed to get role request")
	}

	return c.JSON(toView(request))
}

// Put handles the owner editing message and expected role. Owner, date and
// status are read-only on this endpoint.
func (s *Service) Put(c *fiber.Ctx) error {
	caller := principal.Get(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request id"})
	}

	var in struct {
		ExpectedRole *string `json:"expected_role"`
		Message      *string `json:"message"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	var expectedRole *roles.Role

	if in.ExpectedRole != nil {
		if *in.ExpectedRole == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"expected_role": role.EmptyRoleMsg})
		}

		parsed, err := roles.Parse(*in.ExpectedRole)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"expected_role": role.InvalidRoleMsg})
		}

		expectedRole = &parsed
	}

	updated, err := requestctl.Update(s.db, id, caller, expectedRole, in.Message)
	if err != nil {
		return s.fail(c, id, err, "failed to update role request")
	}

	return c.JSON(toView(updated))
}

// Delete handles the owner withdrawing a request.
func (s *Service) Delete(c *fiber.Ctx) error {
	caller := principal.Get(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request id"})
	}

	if err := requestctl.Delete(s.db, id, caller); err != nil {
		return s.fail(c, id, err, "failed to delete role request")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Transition handles the status transition. Only admin or superuser
// principals may transition, approved and cancelled are terminal, and an
// approval grants the expected role to the request's owner.
func (s *Service) Transition(c *fiber.Ctx) error {
	caller := principal.Get(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request id"})
	}

	var in struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	newStatus, err := models.ParseRoleRequestStatus(in.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "Error: Got invalid status"})
	}

	request, err := requestctl.Transition(s.db, id, caller, newStatus)
	if err != nil {
		if errors.Is(err, requestctl.ErrInvalidTransition) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": "Error: Got invalid transition",
			})
		}

		return s.fail(c, id, err, "failed to transition role request")
	}

	return c.JSON(toView(request))
}

func (s *Service) fail(c *fiber.Ctx, id uint64, err error, logMsg string) error {
	switch {
	case errors.Is(err, requestctl.ErrRequestNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "role request not found"})
	case errors.Is(err, requestctl.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "elevated privilege required"})
	case errors.Is(err, requestctl.ErrNotAuthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "authentication required"})
	}

	log.Error().Err(err).Uint64("request_id", id).Msg(logMsg)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": "internal server error",
	})
}
