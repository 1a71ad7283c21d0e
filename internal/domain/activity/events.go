// Package activity defines the domain events emitted when users act on
// forums, topics and posts. Sinks turn them into learning-record
// statements; emission is best effort and never blocks the action itself.
package activity

import (
	"strconv"
	"time"

	"github.com/openfun/ashley-sub000/internal/domain/shared/events"
)

const (
	EventForumViewed  = "activity.forum.viewed"
	EventTopicViewed  = "activity.topic.viewed"
	EventTopicCreated = "activity.topic.created"
	EventTopicUpdated = "activity.topic.updated"
	EventPostCreated  = "activity.post.created"
	EventPostUpdated  = "activity.post.updated"
)

// EventTypes lists every activity event type, in emission-source order.
var EventTypes = []string{
	EventForumViewed,
	EventTopicViewed,
	EventTopicCreated,
	EventTopicUpdated,
	EventPostCreated,
	EventPostUpdated,
}

// Actor carries the launch-provided identity a statement is attributed
// to. Statements are keyed on the remote id and the consumer site, never
// on tool-internal ids.
type Actor struct {
	UserID       uint
	RemoteUserID string
	ConsumerSlug string
	ConsumerURL  string
}

// Object is the forum, topic or post acted on.
type Object struct {
	Kind string // "forum", "topic" or "post"
	ID   uint
	Name string
}

// Pagination describes the paginated rendering a view event came from:
// the page the user requested and the size of the whole collection.
type Pagination struct {
	Page       int
	TotalItems int
	TotalPages int
}

// Event is one tracked user action. Parent fields are optional and feed
// the statement's context activities.
type Event struct {
	events.BaseEvent
	Actor  Actor
	Object Object
	Locale string

	// ContextLTIID is the course identifier of the launch context.
	ContextLTIID string
	// ForumLTIID and ParentName describe the containing forum (for topic
	// events) or topic (for post events).
	ForumLTIID string
	ParentName string

	// Pagination is only set on topic views.
	Pagination *Pagination
}

func newEvent(eventType string, actor Actor, object Object, locale string) Event {
	return Event{
		BaseEvent: events.BaseEvent{
			AggregateID: object.Kind + ":" + strconv.FormatUint(uint64(object.ID), 10),
			EventType:   eventType,
			OccurredAt:  time.Now(),
		},
		Actor:  actor,
		Object: object,
		Locale: locale,
	}
}

func NewForumViewed(actor Actor, forumID uint, forumName, locale, contextLTIID string) Event {
	e := newEvent(EventForumViewed, actor, Object{Kind: "forum", ID: forumID, Name: forumName}, locale)
	e.ContextLTIID = contextLTIID
	return e
}

func NewTopicViewed(actor Actor, topicID uint, subject, locale, contextLTIID, forumLTIID, forumName string) Event {
	e := newEvent(EventTopicViewed, actor, Object{Kind: "topic", ID: topicID, Name: subject}, locale)
	e.ContextLTIID = contextLTIID
	e.ForumLTIID = forumLTIID
	e.ParentName = forumName
	return e
}

func NewTopicCreated(actor Actor, topicID uint, subject, locale, contextLTIID, forumLTIID, forumName string) Event {
	e := newEvent(EventTopicCreated, actor, Object{Kind: "topic", ID: topicID, Name: subject}, locale)
	e.ContextLTIID = contextLTIID
	e.ForumLTIID = forumLTIID
	e.ParentName = forumName
	return e
}

func NewTopicUpdated(actor Actor, topicID uint, subject, locale, contextLTIID, forumLTIID, forumName string) Event {
	e := newEvent(EventTopicUpdated, actor, Object{Kind: "topic", ID: topicID, Name: subject}, locale)
	e.ContextLTIID = contextLTIID
	e.ForumLTIID = forumLTIID
	e.ParentName = forumName
	return e
}

func NewPostCreated(actor Actor, postID uint, name, locale, contextLTIID, forumLTIID, topicSubject string) Event {
	e := newEvent(EventPostCreated, actor, Object{Kind: "post", ID: postID, Name: name}, locale)
	e.ContextLTIID = contextLTIID
	e.ForumLTIID = forumLTIID
	e.ParentName = topicSubject
	return e
}

func NewPostUpdated(actor Actor, postID uint, name, locale, contextLTIID, forumLTIID, topicSubject string) Event {
	e := newEvent(EventPostUpdated, actor, Object{Kind: "post", ID: postID, Name: name}, locale)
	e.ContextLTIID = contextLTIID
	e.ForumLTIID = forumLTIID
	e.ParentName = topicSubject
	return e
}
