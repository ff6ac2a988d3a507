// Package user exposes the user account endpoints. Reads are public; create,
// update and delete are superuser-only. The detail view is enriched with the
// user's role set and owned posts.
package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/authz"
	"github.com/inkpress/inkpress/internal/config"
	postctl "github.com/inkpress/inkpress/internal/db/controller/post"
	userctl "github.com/inkpress/inkpress/internal/db/controller/user"
	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/db/models"
	"github.com/inkpress/inkpress/internal/validate"
	"github.com/inkpress/inkpress/internal/web/handler"
	"github.com/inkpress/inkpress/internal/web/middleware/principal"
)

const (
	// Path is the base path of the user endpoints.
	Path = "/users"
)

// Service is the user handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the user handler.
var Handler = Service{}

// Init initializes the user handler.
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

// view is the public representation of a user account.
type view struct {
	ID       uint64 `json:"id"`
	Active   bool   `json:"active"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toView(u *models.User) view {
	return view{
		ID:       u.ID,
		Active:   u.Active,
		Username: u.Username,
		Email:    u.Email,
	}
}

// List handles listing all user accounts. Public.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := userctl.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	out := make([]view, 0, len(users))
	for i := range users {
		out = append(out, toView(&users[i]))
	}

	return c.JSON(out)
}

// Get handles the user detail view, enriched with the role set and the
// user's posts. Public.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid user id"})
	}

	dbUser, err := userctl.Get(s.db, id)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "user not found"})
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to get user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	roleList, err := userrole.RolesOf(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to resolve role set")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	posts, err := postctl.ListByOwner(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to list posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	postIDs := make([]uint64, 0, len(posts))
	for i := range posts {
		postIDs = append(postIDs, posts[i].ID)
	}

	return c.JSON(fiber.Map{
		"id":       dbUser.ID,
		"active":   dbUser.Active,
		"username": dbUser.Username,
		"email":    dbUser.Email,
		"roles":    roleList.Strings(),
		"posts":    postIDs,
	})
}

// Post handles administrative user creation. Superuser-only.
func (s *Service) Post(c *fiber.Ctx) error {
	caller := principal.Get(c)

	if !authz.Evaluate(caller, authz.ActionCreate, authz.ResourceUser, authz.Context{}).Allowed() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "superuser privilege required",
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

// Put handles a partial user update. Superuser-only.
func (s *Service) Put(c *fiber.Ctx) error {
	caller := principal.Get(c)

	if !authz.Evaluate(caller, authz.ActionUpdate, authz.ResourceUser, authz.Context{}).Allowed() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "superuser privilege required",
		})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid user id"})
	}

	var in struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Active   *bool   `json:"active"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	if in.Username != nil {
		if err := validate.Username(*in.Username); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"username": err.Error()})
		}
	}

	if in.Email != nil {
		if err := validate.Email(*in.Email); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"email": err.Error()})
		}
	}

	if in.Password != nil {
		if err := validate.Password(*in.Password); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"password": err.Error()})
		}
	}

	updated, err := userctl.Update(s.db, id, userctl.Attrs{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Active:   in.Active,
	})
	if err != nil {
		switch {
		case errors.Is(err, userctl.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "user not found"})
		case errors.Is(err, userctl.ErrUserExists):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"username": err.Error()})
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to update user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	return c.JSON(toView(updated))
}

// Delete handles user deletion. Superuser-only.
func (s *Service) Delete(c *fiber.Ctx) error {
	caller := principal.Get(c)

	if !authz.Evaluate(caller, authz.ActionDelete, authz.ResourceUser, authz.Context{}).Allowed() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "superuser privilege required",
		})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid user id"})
	}

	if err := userctl.Delete(s.db, id); err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "user not found"})
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to delete user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
