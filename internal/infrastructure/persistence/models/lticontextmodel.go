package models

import "time"

// LTIContextModel is the GORM model for the lti_contexts table
type LTIContextModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	ConsumerSlug   string    `gorm:"column:consumer_slug;type:varchar(50);not null;uniqueIndex:uniq_consumer_lti_id"`
	LTIID          string    `gorm:"column:lti_id;type:varchar(255);not null;uniqueIndex:uniq_consumer_lti_id"`
	IsMarkedLocked bool      `gorm:"column:is_marked_locked;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (LTIContextModel) TableName() string {
	return "lti_contexts"
}
