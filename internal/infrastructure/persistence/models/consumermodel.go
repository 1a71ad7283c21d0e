package models

import "time"

// ConsumerModel is the GORM model for the lti_consumers table
type ConsumerModel struct {
	Slug      string    `gorm:"column:slug;type:varchar(50);primaryKey"`
	Title     string    `gorm:"column:title;type:varchar(255);not null"`
	URL       string    `gorm:"column:url;type:varchar(255)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ConsumerModel) TableName() string {
	return "lti_consumers"
}
