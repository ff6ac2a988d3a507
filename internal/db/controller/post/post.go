// Package post provides CRUD operations for posts and bodies and enforces
// the content ownership rule: a post's owner must hold a content-owning role
// at validation time. Violations surface as a ValidationError attributed to
// the offending field, never as a permission error.
package post

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/db/models"
)

var (
	// ErrPostNotFound is returned when a post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrBodyNotFound is returned when a body does not exist.
	ErrBodyNotFound = errors.New("body not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ValidationError is a business-rule violation attributed to a single field.
// It is distinct from a permission denial and maps to a 400-style payload
// keyed by field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Attrs carries the client-controlled post fields for create and update.
type Attrs struct {
	OwnerID      uint64
	Title        string
	BodyID       uint64
	IsRestricted bool
	Rating       float64
}

// Create validates and stores a new post. The declared owner must hold
// writer, admin or superuser; the referenced body must exist.
func Create(db *gorm.DB, attrs Attrs) (*models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := validate(db, attrs); err != nil {
		return nil, err
	}

	post := &models.Post{
		OwnerID:      attrs.OwnerID,
		Title:        attrs.Title,
		BodyID:       attrs.BodyID,
		IsRestricted: attrs.IsRestricted,
		Rating:       attrs.Rating,
	}

	if err := db.Create(post).Error; err != nil {
		return nil, err
	}

	return post, nil
}

// Update replaces a post's client-controlled fields after re-validating the
// ownership rule against the (possibly new) owner.
func Update(db *gorm.DB, id uint64, attrs Attrs) (*models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	post, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if err := validate(db, attrs); err != nil {
		return nil, err
	}

	post.OwnerID = attrs.OwnerID
	post.Title = attrs.Title
	post.BodyID = attrs.BodyID
	post.IsRestricted = attrs.IsRestricted
	post.Rating = attrs.Rating

	if err := db.Save(post).Error; err != nil {
		return nil, err
	}

	return post, nil
}

func validate(db *gorm.DB, attrs Attrs) error {
	canOwn, err := userrole.CanOwnContent(db, attrs.OwnerID)
	if err != nil {
		return err
	}

	if !canOwn {
		return &ValidationError{Field: "owner", Reason: "owner must hold writer, admin or superuser"}
	}

	if _, err := GetBody(db, attrs.BodyID); err != nil {
		if errors.Is(err, ErrBodyNotFound) {
			return &ValidationError{Field: "body", Reason: "body does not exist"}
		}

		return err
	}

	return nil
}

// Get retrieves a post by ID.
func Get(db *gorm.DB, id uint64) (*models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var post models.Post

	result := db.First(&post, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}

		return nil, result.Error
	}

	return &post, nil
}

// List retrieves all posts.
func List(db *gorm.DB) ([]models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var posts []models.Post
	if err := db.Order("id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts, nil
}

// ListByOwner retrieves the posts owned by one user, used to enrich the user
// detail payload.
func ListByOwner(db *gorm.DB, ownerID uint64) ([]models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var posts []models.Post
	if err := db.Where("owner_id = ?", ownerID).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts, nil
}

// Delete removes a post by ID.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Post{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}

	return nil
}

// CreateBody stores a new body.
func CreateBody(db *gorm.DB, text string) (*models.Body, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	body := &models.Body{Text: text}
	if err := db.Create(body).Error; err != nil {
		return nil, err
	}

	return body, nil
}

// GetBody retrieves a body by ID.
func GetBody(db *gorm.DB, id uint64) (*models.Body, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var body models.Body

	result := db.First(&body, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBodyNotFound
		}

		return nil, result.Error
	}

	return &body, nil
}

// ListBodies retrieves all bodies.
func ListBodies(db *gorm.DB) ([]models.Body, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var bodies []models.Body
	if err := db.Order("id ASC").Find(&bodies).Error; err != nil {
		return nil, err
	}

	return bodies, nil
}

// UpdateBody replaces a body's text.
func UpdateBody(db *gorm.DB, id uint64, text string) (*models.Body, error) {
	body, err := GetBody(db, id)
	if err != nil {
		return nil, err
	}

	body.Text = text
	if err := db.Save(body).Error; err != nil {
		return nil, err
	}

	return body, nil
}

// DeleteBody removes a body by ID.
func DeleteBody(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Body{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrBodyNotFound
	}

	return nil
}
