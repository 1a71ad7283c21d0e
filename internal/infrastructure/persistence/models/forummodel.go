package models

import "time"

// ForumModel is the GORM model for the forums table. The lti_id column is
// intentionally not unique: the same launch uuid reached from another
// context produces a distinct forum row.
type ForumModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	LTIID     string    `gorm:"column:lti_id;type:varchar(36);not null;index"`
	Type      string    `gorm:"column:type;type:varchar(20);not null"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Archived  bool      `gorm:"column:archived;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ForumModel) TableName() string {
	return "forums"
}

// ForumLTIContextModel is the join table linking forums to LTI contexts.
// The forum's lti_id is denormalized into the row so the unique index on
// (lti_id, lti_context_id) makes concurrent get-or-create of the same
// launch target converge on a single forum.
type ForumLTIContextModel struct {
	ForumID      uint      `gorm:"column:forum_id;primaryKey"`
	LTIContextID uint      `gorm:"column:lti_context_id;primaryKey;uniqueIndex:uniq_lti_id_context"`
	LTIID        string    `gorm:"column:lti_id;type:varchar(36);not null;uniqueIndex:uniq_lti_id_context,priority:1"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for GORM
func (ForumLTIContextModel) TableName() string {
	return "forum_lti_contexts"
}
