package forum

import (
	"fmt"
	"time"
)

// Topic is one discussion thread. Only the fields the permission gates,
// lock lifecycle and activity statements act on are modelled here; the
// conversation UI is a separate collaborator.
type Topic struct {
	id        uint
	forumID   uint
	posterID  uint
	subject   string
	locked    bool
	createdAt time.Time
	updatedAt time.Time
}

func NewTopic(forumID, posterID uint, subject string) (*Topic, error) {
	if forumID == 0 {
		return nil, fmt.Errorf("topic forum is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("topic subject is required")
	}
	now := time.Now()
	return &Topic{
		forumID:   forumID,
		posterID:  posterID,
		subject:   subject,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructTopic(id, forumID, posterID uint, subject string, locked bool, createdAt, updatedAt time.Time) *Topic {
	return &Topic{
		id:        id,
		forumID:   forumID,
		posterID:  posterID,
		subject:   subject,
		locked:    locked,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (t *Topic) ID() uint            { return t.id }
func (t *Topic) ForumID() uint       { return t.forumID }
func (t *Topic) PosterID() uint      { return t.posterID }
func (t *Topic) Subject() string     { return t.subject }
func (t *Topic) IsLocked() bool      { return t.locked }
func (t *Topic) CreatedAt() time.Time { return t.createdAt }
func (t *Topic) UpdatedAt() time.Time { return t.updatedAt }

func (t *Topic) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("topic ID is already set")
	}
	t.id = id
	return nil
}

func (t *Topic) UpdateSubject(subject string) error {
	if subject == "" {
		return fmt.Errorf("topic subject cannot be empty")
	}
	t.subject = subject
	t.updatedAt = time.Now()
	return nil
}

func (t *Topic) LockTopic() {
	t.locked = true
	t.updatedAt = time.Now()
}

// Post is one message inside a topic.
type Post struct {
	id        uint
	topicID   uint
	posterID  uint
	content   string
	approved  bool
	createdAt time.Time
	updatedAt time.Time
}

func NewPost(topicID, posterID uint, content string) (*Post, error) {
	if topicID == 0 {
		return nil, fmt.Errorf("post topic is required")
	}
	if content == "" {
		return nil, fmt.Errorf("post content is required")
	}
	now := time.Now()
	return &Post{
		topicID:   topicID,
		posterID:  posterID,
		content:   content,
		approved:  true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructPost(id, topicID, posterID uint, content string, approved bool, createdAt, updatedAt time.Time) *Post {
	return &Post{
		id:        id,
		topicID:   topicID,
		posterID:  posterID,
		content:   content,
		approved:  approved,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (p *Post) ID() uint             { return p.id }
func (p *Post) TopicID() uint        { return p.topicID }
func (p *Post) PosterID() uint       { return p.posterID }
func (p *Post) Content() string      { return p.content }
func (p *Post) IsApproved() bool     { return p.approved }
func (p *Post) CreatedAt() time.Time { return p.createdAt }
func (p *Post) UpdatedAt() time.Time { return p.updatedAt }

func (p *Post) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("post ID is already set")
	}
	p.id = id
	return nil
}

// HoldForApproval parks the post until a moderator approves it.
func (p *Post) HoldForApproval() {
	p.approved = false
	p.updatedAt = time.Now()
}

func (p *Post) UpdateContent(content string) error {
	if content == "" {
		return fmt.Errorf("post content cannot be empty")
	}
	p.content = content
	p.updatedAt = time.Now()
	return nil
}
