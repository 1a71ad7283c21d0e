package forum

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ForumType distinguishes postable forums from organisational entries.
type ForumType string

const (
	TypePost     ForumType = "post"
	TypeCategory ForumType = "category"
)

// Forum is one discussion space. Its lti_id is the uuid embedded in the
// launch URL and is stable across re-launches; the same lti_id reached
// from another context yields a distinct forum row, so the row id is the
// real identity.
type Forum struct {
	id        uint
	ltiID     uuid.UUID
	forumType ForumType
	name      string
	archived  bool
	createdAt time.Time
	updatedAt time.Time
}

func NewForum(ltiID uuid.UUID, forumType ForumType, name string) (*Forum, error) {
	if ltiID == uuid.Nil {
		return nil, fmt.Errorf("forum lti id is required")
	}
	if name == "" {
		return nil, fmt.Errorf("forum name is required")
	}
	now := time.Now()
	return &Forum{
		ltiID:     ltiID,
		forumType: forumType,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructForum(id uint, ltiID uuid.UUID, forumType ForumType, name string, archived bool, createdAt, updatedAt time.Time) *Forum {
	return &Forum{
		id:        id,
		ltiID:     ltiID,
		forumType: forumType,
		name:      name,
		archived:  archived,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (f *Forum) ID() uint {
	return f.id
}

func (f *Forum) SetID(id uint) error {
	if f.id != 0 {
		return fmt.Errorf("forum ID is already set")
	}
	f.id = id
	return nil
}

func (f *Forum) LTIID() uuid.UUID {
	return f.ltiID
}

func (f *Forum) Type() ForumType {
	return f.forumType
}

func (f *Forum) Name() string {
	return f.name
}

func (f *Forum) IsArchived() bool {
	return f.archived
}

func (f *Forum) CreatedAt() time.Time {
	return f.createdAt
}

func (f *Forum) UpdatedAt() time.Time {
	return f.updatedAt
}

func (f *Forum) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("forum name cannot be empty")
	}
	f.name = name
	f.updatedAt = time.Now()
	return nil
}

// Archive takes the forum out of every listing. There is no unarchive:
// archiving is a supported end state.
func (f *Forum) Archive() {
	f.archived = true
	f.updatedAt = time.Now()
}
