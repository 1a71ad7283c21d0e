package models

import "time"

// UserModel is the GORM model for the users table. The pair
// (consumer_slug, lti_remote_user_id) carries the identity unique index.
type UserModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	ConsumerSlug    string    `gorm:"column:consumer_slug;type:varchar(50);not null;uniqueIndex:uniq_consumer_remote_user"`
	LTIRemoteUserID string    `gorm:"column:lti_remote_user_id;type:varchar(150);not null;uniqueIndex:uniq_consumer_remote_user"`
	Username        string    `gorm:"column:username;type:varchar(200);not null;uniqueIndex"`
	PublicUsername  string    `gorm:"column:public_username;type:varchar(150)"`
	Email           string    `gorm:"column:email;type:varchar(254)"`
	IsActive        bool      `gorm:"column:is_active;default:true"`
	IsSuperuser     bool      `gorm:"column:is_superuser;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}
