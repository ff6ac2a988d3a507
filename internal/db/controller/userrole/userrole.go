// Package userrole provides the principal-role store: the per-user set of
// granted roles and the idempotent grant/revoke operations over it.
package userrole

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkpress/inkpress/internal/db/models"
	"github.com/inkpress/inkpress/internal/roles"
)

const userQueryPattern = "user_id = ?"

var (
	// ErrUnknownUser is returned when an operation targets a user with no
	// role record. It indicates a missing Ensure call upstream.
	ErrUnknownUser = errors.New("no role record for user")
	// ErrAlreadyExists is returned when Ensure is called twice for the same user.
	ErrAlreadyExists = errors.New("role record already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Ensure creates the empty role set for a new user.
// It fails with ErrAlreadyExists when a record for the user exists, mirroring
// the one-to-one relation between users and their role record.
func Ensure(db *gorm.DB, userID uint64) (*models.UserRoles, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var existing models.UserRoles

	result := db.Where(userQueryPattern, userID).First(&existing)
	if result.Error == nil {
		return nil, ErrAlreadyExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	record := &models.UserRoles{
		UserID: userID,
		Roles:  roles.List{},
	}

	if err := db.Create(record).Error; err != nil {
		return nil, err
	}

	return record, nil
}

// Grant adds a role to the user's set. Granting an already-held role is a
// no-op that still reports success. The read-modify-write of the set runs
// under a row lock so two concurrent grants on the same user cannot lose an
// update.
func Grant(db *gorm.DB, userID uint64, role roles.Role) (roles.List, error) {
	return mutate(db, userID, func(l roles.List) roles.List {
		return l.Add(role)
	})
}

// Revoke removes a role from the user's set. Revoking an unheld role is a
// no-op that still reports success.
func Revoke(db *gorm.DB, userID uint64, role roles.Role) (roles.List, error) {
	return mutate(db, userID, func(l roles.List) roles.List {
		return l.Remove(role)
	})
}

func mutate(db *gorm.DB, userID uint64, apply func(roles.List) roles.List) (roles.List, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out roles.List

	err := db.Transaction(func(tx *gorm.DB) error {
		var record models.UserRoles

		result := lockForUpdate(tx).Where(userQueryPattern, userID).First(&record)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrUnknownUser
			}

			return result.Error
		}

		record.Roles = apply(record.Roles)
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		out = record.Roles

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// lockForUpdate applies a row-level write lock where the dialect supports it.
// SQLite serializes writers on its own and rejects FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}

	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Get retrieves the user's role record, failing with ErrUnknownUser when none
// exists. Use RolesOf for permission checks, which treat a missing record as
// an empty role set instead.
func Get(db *gorm.DB, userID uint64) (*models.UserRoles, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var record models.UserRoles

	result := db.Where(userQueryPattern, userID).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}

		return nil, result.Error
	}

	return &record, nil
}

// Has reports whether the user holds the given role.
// It fails with ErrUnknownUser when the user has no role record.
func Has(db *gorm.DB, userID uint64, role roles.Role) (bool, error) {
	record, err := Get(db, userID)
	if err != nil {
		return false, err
	}

	return record.Roles.Has(role), nil
}

// RolesOf resolves the user's role set for permission evaluation.
// A missing record means "no privilege" here, not an error: anonymous or
// not-yet-registered principals simply hold no roles.
func RolesOf(db *gorm.DB, userID uint64) (roles.List, error) {
	record, err := Get(db, userID)
	if errors.Is(err, ErrUnknownUser) {
		return roles.List{}, nil
	}

	if err != nil {
		return nil, err
	}

	return record.Roles, nil
}

// CanOwnContent reports whether the user may be the owner of a post:
// only holders of writer, admin or superuser qualify.
func CanOwnContent(db *gorm.DB, userID uint64) (bool, error) {
	list, err := RolesOf(db, userID)
	if err != nil {
		return false, err
	}

	return list.HasAny(roles.RoleWriter, roles.RoleAdmin, roles.RoleSuperuser), nil
}
