// Package user provides CRUD operations for user accounts. Creating a user
// also creates its empty role record, so permission checks and role grants
// have a row to operate on from the start.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the username or email is already taken.
	ErrUserExists = errors.New("user with username or email already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create stores a new active user with a hashed password and lazily creates
// the user's empty role set, both within one transaction.
func Create(db *gorm.DB, username, email, password string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var created *models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64

		err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", username, email).
			Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			return ErrUserExists
		}

		user := &models.User{
			Active:   true,
			Username: username,
			Email:    email,
			Password: models.HashPassword(password),
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if _, err := userrole.Ensure(tx, user.ID); err != nil {
			return err
		}

		created = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// GetByUsername retrieves a user by username, used by the login handler.
func GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	result := db.Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// List retrieves all users.
func List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// Attrs carries optional fields for a partial user update; nil fields are
// left untouched.
type Attrs struct {
	Username *string
	Email    *string
	Password *string
	Active   *bool
}

// Update applies a partial update. A new password is hashed before storage;
// username and email uniqueness is re-checked against other users.
func Update(db *gorm.DB, id uint64, attrs Attrs) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	user, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if attrs.Username != nil || attrs.Email != nil {
		username := user.Username
		if attrs.Username != nil {
			username = *attrs.Username
		}

		email := user.Email
		if attrs.Email != nil {
			email = *attrs.Email
		}

		var count int64

		err := db.Model(&models.User{}).
			Where("(username = ? OR email = ?) AND id <> ?", username, email, id).
			Count(&count).Error
		if err != nil {
			return nil, err
		}

		if count > 0 {
			return nil, ErrUserExists
		}

		user.Username = username
		user.Email = email
	}

	if attrs.Password != nil {
		user.Password = models.HashPassword(*attrs.Password)
	}

	if attrs.Active != nil {
		user.Active = *attrs.Active
	}

	if err := db.Save(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user. The role record, requests and posts follow through
// the cascade constraints.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
