package migration

import (
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every model the auto-migrate strategy manages.
// The casbin_rule table is owned by the casbin adapter and is not listed
// here.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.ConsumerModel{},
		&models.PassportModel{},
		&models.UserModel{},
		&models.LTIContextModel{},
		&models.ForumModel{},
		&models.ForumLTIContextModel{},
		&models.TopicModel{},
		&models.PostModel{},
	}
}
