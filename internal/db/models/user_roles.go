// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/inkpress/inkpress/internal/roles"
)

// UserRoles holds the set of roles granted to one user.
// Exactly one record exists per user (one-to-one with User); it is created
// empty when the user is created and mutated only through idempotent
// grant/revoke operations.
type UserRoles struct {
	// UserID is the ID of the user owning this role set. Primary key, which
	// enforces the at-most-one-record-per-user invariant.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// User is the associated user account.
	// When a user is deleted, its role record is removed as well (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Roles is the duplicate-free set of granted roles, stored as JSON.
	Roles roles.List `gorm:"serializer:json;type:text"`
	// CreatedAt is the timestamp when the record was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the record was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the UserRoles model.
// This overrides GORM's default pluralized table naming.
func (UserRoles) TableName() string {
	return "user_roles"
}
