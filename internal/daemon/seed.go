package daemon

import (
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/config"
	userctl "github.com/inkpress/inkpress/internal/db/controller/user"
	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/db/models"
	"github.com/inkpress/inkpress/internal/roles"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Seed the initial superuser if the user table is empty

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		// change the password right after first login
		admin, err := userctl.Create(db, "admin", "admin@localhost", "changeme")
		if err != nil {
			panic("failed to seed admin user")
		}

		if _, err := userrole.Grant(db, admin.ID, roles.RoleSuperuser); err != nil {
			panic("failed to seed admin role")
		}
	}
}
