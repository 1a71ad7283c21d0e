package models

import "time"

// TopicModel is the GORM model for the forum_topics table
type TopicModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	ForumID   uint      `gorm:"column:forum_id;not null;index"`
	PosterID  uint      `gorm:"column:poster_id;not null;index"`
	Subject   string    `gorm:"column:subject;type:varchar(255);not null"`
	Locked    bool      `gorm:"column:locked;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (TopicModel) TableName() string {
	return "forum_topics"
}

// PostModel is the GORM model for the forum_posts table
type PostModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	TopicID   uint      `gorm:"column:topic_id;not null;index"`
	PosterID  uint      `gorm:"column:poster_id;not null;index"`
	Content   string    `gorm:"column:content;type:text;not null"`
	Approved  bool      `gorm:"column:approved;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (PostModel) TableName() string {
	return "forum_posts"
}
