package xapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfun/ashley-sub000/internal/domain/activity"
	"github.com/openfun/ashley-sub000/internal/domain/shared/events"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

func testActor() activity.Actor {
	return activity.Actor{
		UserID:       7,
		RemoteUserID: "student-42",
		ConsumerSlug: "moodle",
		ConsumerURL:  "https://moodle.example.com",
	}
}

func TestPublisher_BuildStatement(t *testing.T) {
	p := NewPublisher(logger.NewLogger())

	t.Run("forum viewed", func(t *testing.T) {
		event := activity.NewForumViewed(testActor(), 42, "Demo forum", "fr-FR", "course-v1:edX+Demo+01")

		statement, err := p.buildStatement(event)
		require.NoError(t, err)

		assert.NotEmpty(t, statement.ID)
		assert.Equal(t, "Agent", statement.Actor.ObjectType)
		assert.Equal(t, "https://moodle.example.com", statement.Actor.Account.HomePage)
		assert.Equal(t, "student-42", statement.Actor.Account.Name)

		assert.Equal(t, VerbViewed, statement.Verb.ID)
		assert.Equal(t, "id://ashley/forum/42", statement.Object.ID)
		assert.Equal(t, ActivityTypeForum, statement.Object.Definition.Type)
		assert.Equal(t, "Demo forum", statement.Object.Definition.Name["fr-FR"])

		// Forum events only nest under the course.
		require.NotNil(t, statement.Context)
		parents := statement.Context.ContextActivities.Parent
		require.Len(t, parents, 1)
		assert.Equal(t, "course-v1:edX+Demo+01", parents[0].ID)
		assert.Equal(t, ActivityTypeCourse, parents[0].Definition.Type)

		ts, err := time.Parse(time.RFC3339, statement.Timestamp)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), ts, time.Minute)
	})

	t.Run("topic created nests under forum and course", func(t *testing.T) {
		event := activity.NewTopicCreated(testActor(), 9, "Weekly questions", "en-US",
			"course-v1:edX+Demo+01", "8bb4f3af-b610-4c36-9a39-a66250d0c0c8", "Demo forum")

		statement, err := p.buildStatement(event)
		require.NoError(t, err)

		assert.Equal(t, VerbCreated, statement.Verb.ID)
		assert.Equal(t, "id://ashley/topic/9", statement.Object.ID)
		assert.Equal(t, ActivityTypeTopic, statement.Object.Definition.Type)

		parents := statement.Context.ContextActivities.Parent
		require.Len(t, parents, 2)
		assert.Equal(t, "uuid://8bb4f3af-b610-4c36-9a39-a66250d0c0c8", parents[0].ID)
		assert.Equal(t, ActivityTypeForum, parents[0].Definition.Type)
		assert.Equal(t, "Demo forum", parents[0].Definition.Name["en-US"])
		assert.Equal(t, "course-v1:edX+Demo+01", parents[1].ID)
	})

	t.Run("post updated nests under its topic", func(t *testing.T) {
		event := activity.NewPostUpdated(testActor(), 31, "reply", "en-US",
			"course-v1:edX+Demo+01", "8bb4f3af-b610-4c36-9a39-a66250d0c0c8", "Weekly questions")

		statement, err := p.buildStatement(event)
		require.NoError(t, err)

		assert.Equal(t, VerbUpdated, statement.Verb.ID)
		assert.Equal(t, "id://ashley/post/31", statement.Object.ID)
		assert.Equal(t, ActivityTypePost, statement.Object.Definition.Type)

		parents := statement.Context.ContextActivities.Parent
		require.Len(t, parents, 2)
		assert.Equal(t, ActivityTypeTopic, parents[0].Definition.Type)
		assert.Equal(t, "Weekly questions", parents[0].Definition.Name["en-US"])
	})

	t.Run("topic viewed carries its pagination as extensions", func(t *testing.T) {
		event := activity.NewTopicViewed(testActor(), 9, "Weekly questions", "en-US",
			"course-v1:edX+Demo+01", "8bb4f3af-b610-4c36-9a39-a66250d0c0c8", "Demo forum")
		event.Pagination = &activity.Pagination{Page: 2, TotalItems: 20, TotalPages: 2}

		statement, err := p.buildStatement(event)
		require.NoError(t, err)

		require.NotNil(t, statement.Object.Definition.Extensions)
		assert.Equal(t, 20, statement.Object.Definition.Extensions[ExtensionTotalItems])
		assert.Equal(t, 2, statement.Object.Definition.Extensions[ExtensionTotalPages])

		require.NotNil(t, statement.Context)
		assert.Equal(t, 2, statement.Context.Extensions[ExtensionPage])

		payload, err := json.Marshal(statement)
		require.NoError(t, err)
		assert.Contains(t, string(payload), ExtensionPage)
		assert.Contains(t, string(payload), ExtensionTotalItems)
		assert.Contains(t, string(payload), ExtensionTotalPages)
	})

	t.Run("events without pagination serialize without extensions", func(t *testing.T) {
		event := activity.NewTopicCreated(testActor(), 9, "Weekly questions", "en-US",
			"course-v1:edX+Demo+01", "8bb4f3af-b610-4c36-9a39-a66250d0c0c8", "Demo forum")

		statement, err := p.buildStatement(event)
		require.NoError(t, err)

		payload, err := json.Marshal(statement)
		require.NoError(t, err)
		assert.NotContains(t, string(payload), "extensions")
	})

	t.Run("empty locale falls back to en-US", func(t *testing.T) {
		event := activity.NewForumViewed(testActor(), 42, "Demo forum", "", "course-v1:edX+Demo+01")

		statement, err := p.buildStatement(event)
		require.NoError(t, err)
		assert.Equal(t, "Demo forum", statement.Object.Definition.Name["en-US"])
	})

	t.Run("statements without an actor are dropped", func(t *testing.T) {
		actor := testActor()
		actor.RemoteUserID = ""
		event := activity.NewForumViewed(actor, 42, "Demo forum", "en-US", "course-v1:edX+Demo+01")

		_, err := p.buildStatement(event)
		require.Error(t, err)
		assert.Error(t, p.Handle(event))
	})
}

func TestPublisher_Handle(t *testing.T) {
	p := NewPublisher(logger.NewLogger())

	t.Run("handles activity events", func(t *testing.T) {
		event := activity.NewForumViewed(testActor(), 42, "Demo forum", "en-US", "course-v1:edX+Demo+01")
		assert.NoError(t, p.Handle(event))
	})

	t.Run("rejects foreign events", func(t *testing.T) {
		assert.Error(t, p.Handle(events.BaseEvent{EventType: "something.else"}))
	})
}

func TestPublisher_CanHandle(t *testing.T) {
	p := NewPublisher(logger.NewLogger())

	for _, eventType := range activity.EventTypes {
		assert.True(t, p.CanHandle(eventType))
	}
	assert.False(t, p.CanHandle("something.else"))
}
