package forum

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists forums and their many-to-many link to LTI contexts.
type Repository interface {
	Create(ctx context.Context, forum *Forum) error
	GetByID(ctx context.Context, id uint) (*Forum, error)
	// GetByLTIIDAndContext finds the forum a launch targets within one
	// context, nil when the (lti id, context) pair was never seen.
	GetByLTIIDAndContext(ctx context.Context, ltiID uuid.UUID, forumType ForumType, contextID uint) (*Forum, error)
	// LatestNameByLTIID returns the name of the most recently created
	// forum sharing the lti id, across all contexts; "" when none exists.
	LatestNameByLTIID(ctx context.Context, ltiID uuid.UUID) (string, error)
	// AttachContext links a forum to a context. The (lti id, context)
	// pair is unique across the join: a second forum with the same lti
	// id loses with a conflict error and retries as a lookup.
	AttachContext(ctx context.Context, forumID uint, ltiID uuid.UUID, contextID uint) error
	// Delete removes a forum row that lost the provisioning race before
	// it was ever attached or granted on.
	Delete(ctx context.Context, id uint) error
	// ContextIDs lists every context a forum is attached to.
	ContextIDs(ctx context.Context, forumID uint) ([]uint, error)
	// ListByContext lists the forums attached to one context.
	ListByContext(ctx context.Context, contextID uint) ([]*Forum, error)
	// ListAll iterates every forum; used by the permission sync command.
	ListAll(ctx context.Context) ([]*Forum, error)
	Update(ctx context.Context, forum *Forum) error
}

// TopicRepository persists topics.
type TopicRepository interface {
	Create(ctx context.Context, topic *Topic) error
	GetByID(ctx context.Context, id uint) (*Topic, error)
	Update(ctx context.Context, topic *Topic) error
	ListByForum(ctx context.Context, forumID uint) ([]*Topic, error)
}

// PostRepository persists posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id uint) (*Post, error)
	Update(ctx context.Context, post *Post) error
	ListByTopic(ctx context.Context, topicID uint) ([]*Post, error)
}
