// Package rolerequest implements the role-request workflow: per-user requests
// for role elevation with an owner-controlled lifecycle and an elevated-only
// approval transition.
//
// Access policy: ownership-gated lookups (get, update, delete) report a
// request a caller may not touch as ErrRequestNotFound, hiding its existence.
// ErrForbidden is reserved for the transition operation, where the caller
// already knows the request exists.
package rolerequest

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/authz"
	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/db/models"
	"github.com/inkpress/inkpress/internal/roles"
)

var (
	// ErrRequestNotFound is returned when a request does not exist or the
	// caller is not allowed to see it.
	ErrRequestNotFound = errors.New("role request not found")
	// ErrForbidden is returned when the caller lacks the privilege for a
	// status transition.
	ErrForbidden = errors.New("not allowed to transition role request")
	// ErrInvalidTransition is returned for transitions out of a terminal
	// state or back into the opened state.
	ErrInvalidTransition = errors.New("invalid role request transition")
	// ErrNotAuthenticated is returned when an anonymous caller attempts to
	// create a request.
	ErrNotAuthenticated = errors.New("authentication required")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create opens a new role request owned by the caller. The owner is always
// the caller itself and the status is always opened; neither is ever
// client-supplied.
func Create(db *gorm.DB, caller authz.Principal, expectedRole roles.Role, message string) (*models.RoleRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !authz.Evaluate(caller, authz.ActionCreate, authz.ResourceRoleRequest, authz.Context{}).Allowed() {
		return nil, ErrNotAuthenticated
	}

	request := &models.RoleRequest{
		Date:         time.Now().UTC(),
		UserID:       caller.ID,
		ExpectedRole: expectedRole,
		Status:       models.RoleRequestOpened,
		Message:      message,
	}

	if err := db.Create(request).Error; err != nil {
		return nil, err
	}

	return request, nil
}

// Get retrieves a single request, visible to its owner and to principals
// holding admin or superuser.
func Get(db *gorm.DB, id uint64, caller authz.Principal) (*models.RoleRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	request, err := fetch(db, id)
	if err != nil {
		return nil, err
	}

	ctx := authz.Context{OwnerID: request.UserID}
	if !authz.Evaluate(caller, authz.ActionRead, authz.ResourceRoleRequest, ctx).Allowed() {
		return nil, ErrRequestNotFound
	}

	return request, nil
}

// ListFor returns the requests visible to the caller: a superuser sees all,
// everyone else only their own.
func ListFor(db *gorm.DB, caller authz.Principal) ([]models.RoleRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !authz.Evaluate(caller, authz.ActionList, authz.ResourceRoleRequest, authz.Context{}).Allowed() {
		return nil, ErrNotAuthenticated
	}

	tx := db.Model(&models.RoleRequest{}).Order("id ASC")
	if !caller.Roles.Has(roles.RoleSuperuser) {
		tx = tx.Where("user_id = ?", caller.ID)
	}

	var requests []models.RoleRequest
	if err := tx.Find(&requests).Error; err != nil {
		return nil, err
	}

	return requests, nil
}

// Update lets the owner edit the request's message and expected role.
// Owner, creation date and status are read-only here; the status moves only
// through Transition. Admin and superuser do not bypass the ownership gate.
func Update(db *gorm.DB, id uint64, caller authz.Principal, expectedRole *roles.Role, message *string) (*models.RoleRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	request, err := fetch(db, id)
	if err != nil {
		return nil, err
	}

	ctx := authz.Context{OwnerID: request.UserID}
	if !authz.Evaluate(caller, authz.ActionUpdate, authz.ResourceRoleRequest, ctx).Allowed() {
		return nil, ErrRequestNotFound
	}

	if expectedRole != nil {
		request.ExpectedRole = *expectedRole
	}

	if message != nil {
		request.Message = *message
	}

	if err := db.Save(request).Error; err != nil {
		return nil, err
	}

	return request, nil
}

// Delete removes a request. Strict ownership, same as Update.
func Delete(db *gorm.DB, id uint64, caller authz.Principal) error {
	if db == nil {
		return ErrDBNil
	}

	request, err := fetch(db, id)
	if err != nil {
		return err
	}

	ctx := authz.Context{OwnerID: request.UserID}
	if !authz.Evaluate(caller, authz.ActionDelete, authz.ResourceRoleRequest, ctx).Allowed() {
		return ErrRequestNotFound
	}

	return db.Delete(request).Error
}

// Transition moves a request's status away from opened. Only a principal
// holding admin or superuser may transition; approved and cancelled are
// terminal. Approving grants the expected role to the request's owner within
// the same transaction, so a failed grant leaves the request opened.
func Transition(db *gorm.DB, id uint64, caller authz.Principal, newStatus models.RoleRequestStatus) (*models.RoleRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !caller.Authenticated || !caller.Roles.HasAny(roles.RoleAdmin, roles.RoleSuperuser) {
		return nil, ErrForbidden
	}

	var request *models.RoleRequest

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error

		request, err = fetch(tx, id)
		if err != nil {
			return err
		}

		if request.Status.Terminal() || newStatus == models.RoleRequestOpened {
			return ErrInvalidTransition
		}

		request.Status = newStatus
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		if newStatus == models.RoleRequestApproved {
			if _, err := userrole.Grant(tx, request.UserID, request.ExpectedRole); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

func fetch(db *gorm.DB, id uint64) (*models.RoleRequest, error) {
	var request models.RoleRequest

	result := db.First(&request, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}

		return nil, result.Error
	}

	return &request, nil
}
