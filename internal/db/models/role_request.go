package models

import (
	"errors"
	"time"

	"github.com/inkpress/inkpress/internal/roles"
)

// RoleRequestStatus represents the lifecycle state of a role request.
type RoleRequestStatus string

const (
	// RoleRequestOpened is the initial state of every new request.
	RoleRequestOpened RoleRequestStatus = "opened"
	// RoleRequestCancelled is a terminal state: the request was rejected.
	RoleRequestCancelled RoleRequestStatus = "cancelled"
	// RoleRequestApproved is a terminal state: the requested role was granted.
	RoleRequestApproved RoleRequestStatus = "approved"
)

// ErrInvalidStatus is returned when a status literal is not part of the
// role-request state set.
var ErrInvalidStatus = errors.New("invalid role request status")

// ParseRoleRequestStatus validates a status literal arriving from outside the
// system. Literals are case-sensitive lowercase strings.
func ParseRoleRequestStatus(literal string) (RoleRequestStatus, error) {
	switch RoleRequestStatus(literal) {
	case RoleRequestOpened, RoleRequestCancelled, RoleRequestApproved:
		return RoleRequestStatus(literal), nil
	}

	return "", ErrInvalidStatus
}

// Terminal reports whether the status permits no further transitions.
func (s RoleRequestStatus) Terminal() bool {
	return s == RoleRequestCancelled || s == RoleRequestApproved
}

// RoleRequest records a user asking to be granted a role.
// The owner and creation date are set at creation and never change; the owner
// may edit message and expected role while the request is opened, and only a
// principal holding an elevated role may move the status away from opened.
type RoleRequest struct {
	// ID is the unique identifier for the request.
	ID uint64 `gorm:"primaryKey"`
	// Date is the creation timestamp, immutable after creation.
	Date time.Time `gorm:"not null"`
	// UserID is the owner of the request, injected server-side at creation.
	UserID uint64 `gorm:"column:user_id;not null;index"`
	// User is the associated owner account.
	// When a user is deleted, their requests are removed as well (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// ExpectedRole is the role the owner is asking for.
	ExpectedRole roles.Role `gorm:"type:varchar(20);not null"`
	// Status is the lifecycle state of the request.
	Status RoleRequestStatus `gorm:"type:varchar(20);not null;default:'opened'"`
	// Message is the owner's free-form justification.
	Message string `gorm:"type:text"`
}

// TableName specifies the database table name for the RoleRequest model.
// This overrides GORM's default pluralized table naming.
func (RoleRequest) TableName() string {
	return "role_requests"
}
