// Package post exposes the content post endpoints. Access is open; the data
// layer enforces the content ownership rule and reports violations as
// field-keyed validation errors.
package post

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
	// Path is the base path of the post endpoints.
	Path = "/posts"
)

// Service is the post handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the post handler.
var Handler = Service{}

// Init initializes the post handler.
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

// attrs is the client-controlled request payload for create and update.
type attrs struct {
	Owner        uint64  `json:"owner"`
	Title        string  `json:"title"`
	Body         uint64  `json:"body"`
	IsRestricted bool    `json:"is_restricted"`
	Rating       float64 `json:"rating"`
}

// view is the public representation of a post.
type view struct {
	ID           uint64  `json:"id"`
	Owner        uint64  `json:"owner"`
	Title        string  `json:"title"`
	Body         uint64  `json:"body"`
	IsRestricted bool    `json:"is_restricted"`
	Rating       float64 `json:"rating"`
}

func toView(p *models.Post) view {
	return view{
		ID:           p.ID,
		Owner:        p.OwnerID,
		Title:        p.Title,
		Body:         p.BodyID,
		IsRestricted: p.IsRestricted,
		Rating:       p.Rating,
	}
}

func toAttrs(in attrs) postctl.Attrs {
	return postctl.Attrs{
		OwnerID:      in.Owner,
		Title:        in.Title,
		BodyID:       in.Body,
		IsRestricted: in.IsRestricted,
		Rating:       in.Rating,
	}
}

// List handles listing all posts.
func (s *Service) List(c *fiber.Ctx) error {
	posts, err := postctl.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	out := make([]view, 0, len(posts))
	for i := range posts {
		out = append(out, toView(&posts[i]))
	}

	return c.JSON(out)
}

// Get handles the post detail view.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid post id"})
	}

	post, err := postctl.Get(s.db, id)
	if err != nil {
		if errors.Is(err, postctl.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "post not found"})
		}

		log.Error().Err(err).Uint64("post_id", id).Msg("failed to get post")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	return c.JSON(toView(post))
}

// Post handles post creation. A declared owner without a content-owning role
// fails validation on the owner field, not with a permission error.
func (s *Service) Post(c *fiber.Ctx) error {
	var in attrs

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	created, err := postctl.Create(s.db, toAttrs(in))
	if err != nil {
		return s.fail(c, 0, err, "failed to create post")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": created.ID})
}

// Put handles a full post update, re-validating the ownership rule.
func (s *Service) Put(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid post id"})
	}

	var in attrs

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "malformed request body",
		})
	}

	updated, err := postctl.Update(s.db, id, toAttrs(in))
	if err != nil {
		return s.fail(c, id, err, "failed to update post")
	}

	return c.JSON(toView(updated))
}

// Delete handles post deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid post id"})
	}

	if err := postctl.Delete(s.db, id); err != nil {
		return s.fail(c, id, err, "failed to delete post")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) fail(c *fiber.Ctx, id uint64, err error, logMsg string) error {
	var validationErr *postctl.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			validationErr.Field: validationErr.Reason,
		})
	}

	if errors.Is(err, postctl.ErrPostNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "post not found"})
	}

	log.Error().Err(err).Uint64("post_id", id).Msg(logMsg)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": "internal server error",
	})
}
