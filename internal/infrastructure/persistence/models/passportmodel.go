package models

import "time"

// PassportModel is the GORM model for the lti_passports table
type PassportModel struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	ConsumerSlug     string    `gorm:"column:consumer_slug;type:varchar(50);not null;index"`
	Title            string    `gorm:"column:title;type:varchar(255)"`
	OAuthConsumerKey string    `gorm:"column:oauth_consumer_key;type:varchar(255);not null;uniqueIndex"`
	SharedSecret     string    `gorm:"column:shared_secret;type:varchar(255);not null"`
	IsEnabled        bool      `gorm:"column:is_enabled;default:true"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (PassportModel) TableName() string {
	return "lti_passports"
}
