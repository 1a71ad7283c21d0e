package forum

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/activity"
	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/lti"
	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	domainPermission "github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/domain/shared/events"
	"github.com/openfun/ashley-sub000/internal/domain/user"
	infraPermission "github.com/openfun/ashley-sub000/internal/infrastructure/permission"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/infrastructure/repository"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

type capturePublisher struct {
	events []events.DomainEvent
}

func (p *capturePublisher) Publish(event events.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) eventTypes() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.GetEventType())
	}
	return types
}

type conversationFixture struct {
	svc       *ConversationService
	enforcer  domainPermission.Enforcer
	forums    forum.Repository
	topics    forum.TopicRepository
	posts     forum.PostRepository
	contexts  lticontext.Repository
	users     user.Repository
	published *capturePublisher
	ltiCtx    *lticontext.LTIContext
	forum     *forum.Forum
	userSeq   int
}

func setupConversation(t *testing.T) *conversationFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ConsumerModel{},
		&models.UserModel{},
		&models.LTIContextModel{},
		&models.ForumModel{},
		&models.ForumLTIContextModel{},
		&models.TopicModel{},
		&models.PostModel{},
	))

	log := logger.NewLogger()
	ctx := context.Background()

	consumerRepo := repository.NewConsumerRepository(db)
	userRepo := repository.NewUserRepository(db)
	contextRepo := repository.NewLTIContextRepository(db)
	forumRepo := repository.NewForumRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	postRepo := repository.NewPostRepository(db)

	consumer, err := lti.NewConsumer("moodle", "Moodle site", "https://moodle.example.com")
	require.NoError(t, err)
	require.NoError(t, consumerRepo.Create(ctx, consumer))

	ltiCtx, err := lticontext.NewLTIContext("moodle", "course-v1:edX+Demo+01")
	require.NoError(t, err)
	require.NoError(t, contextRepo.Create(ctx, ltiCtx))

	enforcer, err := infraPermission.NewMemoryEnforcer(log)
	require.NoError(t, err)

	published := &capturePublisher{}
	svc := NewConversationService(forumRepo, topicRepo, postRepo, contextRepo,
		userRepo, consumerRepo, enforcer, published, log)

	fx := &conversationFixture{
		svc:       svc,
		enforcer:  enforcer,
		forums:    forumRepo,
		topics:    topicRepo,
		posts:     postRepo,
		contexts:  contextRepo,
		users:     userRepo,
		published: published,
		ltiCtx:    ltiCtx,
	}
	fx.forum = fx.addForum(t, ltiCtx, "Demo forum")
	fx.grantSet(t, ltiCtx.BaseGroupName(), fx.forum.ID(), domainPermission.BasePermissions())
	return fx
}

func (fx *conversationFixture) addForum(t *testing.T, ltiCtx *lticontext.LTIContext, name string) *forum.Forum {
	t.Helper()
	ctx := context.Background()

	f, err := forum.NewForum(uuid.New(), forum.TypePost, name)
	require.NoError(t, err)
	require.NoError(t, fx.forums.Create(ctx, f))
	require.NoError(t, fx.forums.AttachContext(ctx, f.ID(), f.LTIID(), ltiCtx.ID()))
	return f
}

func (fx *conversationFixture) grantSet(t *testing.T, group string, forumID uint, perms []domainPermission.Codename) {
	t.Helper()
	ctx := context.Background()
	for _, codename := range perms {
		require.NoError(t, fx.enforcer.Grant(ctx, group, forumID, codename))
	}
}

// newUser creates a user without any group membership.
func (fx *conversationFixture) newUser(t *testing.T, publicName string) *user.User {
	t.Helper()
	fx.userSeq++
	remoteID := fmt.Sprintf("remote-%d", fx.userSeq)

	u, err := user.NewUser("moodle", remoteID, remoteID+"@example.com", publicName)
	require.NoError(t, err)
	require.NoError(t, fx.users.Create(context.Background(), u))
	return u
}

// newMember creates a user belonging to the context's base group.
func (fx *conversationFixture) newMember(t *testing.T, publicName string) *user.User {
	t.Helper()
	u := fx.newUser(t, publicName)
	require.NoError(t, fx.enforcer.AddUserToGroup(context.Background(), u.ID(), fx.ltiCtx.BaseGroupName()))
	return u
}

// newModerator creates a member of the moderator group, which holds the
// admin permission set on the fixture forum.
func (fx *conversationFixture) newModerator(t *testing.T, publicName string) *user.User {
	t.Helper()
	u := fx.newUser(t, publicName)
	fx.grantSet(t, fx.ltiCtx.ModeratorGroupName(), fx.forum.ID(), domainPermission.AdminPermissions())
	require.NoError(t, fx.enforcer.AddUserToGroup(context.Background(), u.ID(), fx.ltiCtx.ModeratorGroupName()))
	return u
}

func newTestContext(t *testing.T, fx *conversationFixture, ltiID string) *lticontext.LTIContext {
	t.Helper()
	ltiCtx, err := lticontext.NewLTIContext("moodle", ltiID)
	require.NoError(t, err)
	require.NoError(t, fx.contexts.Create(context.Background(), ltiCtx))
	return ltiCtx
}

func (fx *conversationFixture) seedTopic(t *testing.T, posterID uint, subject string, locked bool) *forum.Topic {
	t.Helper()
	topic, err := forum.NewTopic(fx.forum.ID(), posterID, subject)
	require.NoError(t, err)
	if locked {
		topic.LockTopic()
	}
	require.NoError(t, fx.topics.Create(context.Background(), topic))
	return topic
}

func TestConversationService_ViewForum(t *testing.T) {
	ctx := context.Background()

	t.Run("member sees the forum page", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		fx.seedTopic(t, member.ID(), "First topic", false)

		page, err := fx.svc.ViewForum(ctx, ViewForumQuery{
			ForumID:   fx.forum.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
			Locale:    "en-US",
		})
		require.NoError(t, err)
		assert.Equal(t, "Demo forum", page.Forum.Name())
		assert.Len(t, page.Topics, 1)
		assert.False(t, page.Locked)

		require.Len(t, fx.published.events, 1)
		assert.Equal(t, activity.EventForumViewed, fx.published.events[0].GetEventType())
	})

	t.Run("requires read permission", func(t *testing.T) {
		fx := setupConversation(t)
		outsider := fx.newUser(t, "Mallory")

		_, err := fx.svc.ViewForum(ctx, ViewForumQuery{
			ForumID:   fx.forum.ID(),
			UserID:    outsider.ID(),
			ContextID: fx.ltiCtx.ID(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
		assert.Empty(t, fx.published.events)
	})

	t.Run("superuser bypasses the read gate", func(t *testing.T) {
		fx := setupConversation(t)
		outsider := fx.newUser(t, "Root")

		page, err := fx.svc.ViewForum(ctx, ViewForumQuery{
			ForumID:     fx.forum.ID(),
			UserID:      outsider.ID(),
			IsSuperuser: true,
			ContextID:   fx.ltiCtx.ID(),
		})
		require.NoError(t, err)
		assert.Equal(t, fx.forum.ID(), page.Forum.ID())
	})

	t.Run("forum of another context is forbidden", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")

		otherCtx := newTestContext(t, fx, "course-v1:edX+Other+02")
		otherForum := fx.addForum(t, otherCtx, "Other forum")

		_, err := fx.svc.ViewForum(ctx, ViewForumQuery{
			ForumID:   otherForum.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("locked flag follows the context", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		require.NoError(t, fx.contexts.SetLockFlag(ctx, fx.ltiCtx.ID(), true))

		page, err := fx.svc.ViewForum(ctx, ViewForumQuery{
			ForumID:   fx.forum.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
		})
		require.NoError(t, err)
		assert.True(t, page.Locked)
	})
}

func TestConversationService_ViewTopic(t *testing.T) {
	ctx := context.Background()

	t.Run("member sees the topic page and the view event carries pagination", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		topic := fx.seedTopic(t, member.ID(), "Weekly questions", false)
		for i := 0; i < PostsPerPage+1; i++ {
			post, err := forum.NewPost(topic.ID(), member.ID(), fmt.Sprintf("post %d", i))
			require.NoError(t, err)
			require.NoError(t, fx.posts.Create(ctx, post))
		}

		page, err := fx.svc.ViewTopic(ctx, ViewTopicQuery{
			TopicID:   topic.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
			Locale:    "en-US",
			Page:      2,
		})
		require.NoError(t, err)
		assert.Len(t, page.Posts, PostsPerPage+1)

		require.Len(t, fx.published.events, 1)
		event, ok := fx.published.events[0].(activity.Event)
		require.True(t, ok)
		assert.Equal(t, activity.EventTopicViewed, event.GetEventType())
		require.NotNil(t, event.Pagination)
		assert.Equal(t, 2, event.Pagination.Page)
		assert.Equal(t, PostsPerPage+1, event.Pagination.TotalItems)
		assert.Equal(t, 2, event.Pagination.TotalPages)
	})

	t.Run("missing page defaults to the first", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		topic := fx.seedTopic(t, member.ID(), "Weekly questions", false)
		post, err := forum.NewPost(topic.ID(), member.ID(), "only post")
		require.NoError(t, err)
		require.NoError(t, fx.posts.Create(ctx, post))

		_, err = fx.svc.ViewTopic(ctx, ViewTopicQuery{
			TopicID:   topic.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
		})
		require.NoError(t, err)

		require.Len(t, fx.published.events, 1)
		event := fx.published.events[0].(activity.Event)
		require.NotNil(t, event.Pagination)
		assert.Equal(t, 1, event.Pagination.Page)
		assert.Equal(t, 1, event.Pagination.TotalItems)
		assert.Equal(t, 1, event.Pagination.TotalPages)
	})

	t.Run("requires read permission", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		outsider := fx.newUser(t, "Mallory")
		topic := fx.seedTopic(t, member.ID(), "Weekly questions", false)

		_, err := fx.svc.ViewTopic(ctx, ViewTopicQuery{
			TopicID:   topic.ID(),
			UserID:    outsider.ID(),
			ContextID: fx.ltiCtx.ID(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
		assert.Empty(t, fx.published.events)
	})
}

func TestConversationService_CreateTopic(t *testing.T) {
	ctx := context.Background()

	t.Run("member starts a topic with an approved first post", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")

		topic, err := fx.svc.CreateTopic(ctx, CreateTopicCommand{
			ForumID:   fx.forum.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
			Subject:   "Weekly questions",
			Content:   "What did everyone think of chapter 3?",
		})
		require.NoError(t, err)
		require.NotZero(t, topic.ID())

		saved, err := fx.topics.GetByID(ctx, topic.ID())
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Weekly questions", saved.Subject())

		posts, err := fx.posts.ListByTopic(ctx, topic.ID())
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.True(t, posts[0].IsApproved())
		assert.Equal(t, member.ID(), posts[0].PosterID())

		assert.Contains(t, fx.published.eventTypes(), activity.EventTopicCreated)
	})

	t.Run("subject markup is stripped", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")

		topic, err := fx.svc.CreateTopic(ctx, CreateTopicCommand{
			ForumID:   fx.forum.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
			Subject:   "  <b>Weekly</b> questions ",
			Content:   "body",
		})
		require.NoError(t, err)
		assert.Equal(t, "Weekly questions", topic.Subject())
	})

	t.Run("requires the start-topic permission", func(t *testing.T) {
		fx := setupConversation(t)
		reader := fx.newUser(t, "Bob")
		fx.grantSet(t, "cg:readers", fx.forum.ID(), domainPermission.BaseReadPermissions())
		require.NoError(t, fx.enforcer.AddUserToGroup(ctx, reader.ID(), "cg:readers"))

		_, err := fx.svc.CreateTopic(ctx, CreateTopicCommand{
			ForumID:   fx.forum.ID(),
			UserID:    reader.ID(),
			ContextID: fx.ltiCtx.ID(),
			Subject:   "Hi",
			Content:   "body",
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("first post is held without the approval bypass", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		require.NoError(t, fx.enforcer.Revoke(ctx, fx.ltiCtx.BaseGroupName(), fx.forum.ID(), domainPermission.CanPostWithoutApproval))

		topic, err := fx.svc.CreateTopic(ctx, CreateTopicCommand{
			ForumID:   fx.forum.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
			Subject:   "Moderated",
			Content:   "awaiting review",
		})
		require.NoError(t, err)

		posts, err := fx.posts.ListByTopic(ctx, topic.ID())
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.False(t, posts[0].IsApproved())
	})
}

func TestConversationService_Reply(t *testing.T) {
	ctx := context.Background()

	t.Run("member replies to an open topic", func(t *testing.T) {
		fx := setupConversation(t)
		author := fx.newMember(t, "Alice")
		replier := fx.newMember(t, "Bob")
		topic := fx.seedTopic(t, author.ID(), "Open thread", false)

		post, err := fx.svc.Reply(ctx, ReplyCommand{
			TopicID:   topic.ID(),
			UserID:    replier.ID(),
			ContextID: fx.ltiCtx.ID(),
			Content:   "I agree.",
		})
		require.NoError(t, err)
		assert.True(t, post.IsApproved())
		assert.Equal(t, replier.ID(), post.PosterID())
		assert.Contains(t, fx.published.eventTypes(), activity.EventPostCreated)
	})

	t.Run("locked topic rejects ordinary members", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		topic := fx.seedTopic(t, member.ID(), "Locked thread", true)

		_, err := fx.svc.Reply(ctx, ReplyCommand{
			TopicID:   topic.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
			Content:   "late answer",
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("locked topic accepts the locked-reply permission", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		moderator := fx.newModerator(t, "Mona")
		topic := fx.seedTopic(t, member.ID(), "Locked thread", true)

		post, err := fx.svc.Reply(ctx, ReplyCommand{
			TopicID:   topic.ID(),
			UserID:    moderator.ID(),
			ContextID: fx.ltiCtx.ID(),
			Content:   "closing note",
		})
		require.NoError(t, err)
		assert.True(t, post.IsApproved())
	})
}

func TestConversationService_UpdatePost(t *testing.T) {
	ctx := context.Background()

	seedPost := func(t *testing.T, fx *conversationFixture, topicID, posterID uint) *forum.Post {
		t.Helper()
		post, err := forum.NewPost(topicID, posterID, "original content")
		require.NoError(t, err)
		require.NoError(t, fx.posts.Create(ctx, post))
		return post
	}

	t.Run("author edits their own post", func(t *testing.T) {
		fx := setupConversation(t)
		author := fx.newMember(t, "Alice")
		topic := fx.seedTopic(t, author.ID(), "Thread", false)
		post := seedPost(t, fx, topic.ID(), author.ID())

		updated, err := fx.svc.UpdatePost(ctx, UpdatePostCommand{
			PostID:    post.ID(),
			UserID:    author.ID(),
			ContextID: fx.ltiCtx.ID(),
			Content:   "revised content",
		})
		require.NoError(t, err)
		assert.Equal(t, "revised content", updated.Content())
		assert.Contains(t, fx.published.eventTypes(), activity.EventPostUpdated)
	})

	t.Run("members cannot edit someone else's post", func(t *testing.T) {
		fx := setupConversation(t)
		author := fx.newMember(t, "Alice")
		other := fx.newMember(t, "Bob")
		topic := fx.seedTopic(t, author.ID(), "Thread", false)
		post := seedPost(t, fx, topic.ID(), author.ID())

		_, err := fx.svc.UpdatePost(ctx, UpdatePostCommand{
			PostID:    post.ID(),
			UserID:    other.ID(),
			ContextID: fx.ltiCtx.ID(),
			Content:   "vandalism",
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("moderators edit any post", func(t *testing.T) {
		fx := setupConversation(t)
		author := fx.newMember(t, "Alice")
		moderator := fx.newModerator(t, "Mona")
		topic := fx.seedTopic(t, author.ID(), "Thread", false)
		post := seedPost(t, fx, topic.ID(), author.ID())

		updated, err := fx.svc.UpdatePost(ctx, UpdatePostCommand{
			PostID:    post.ID(),
			UserID:    moderator.ID(),
			ContextID: fx.ltiCtx.ID(),
			Content:   "moderated content",
		})
		require.NoError(t, err)
		assert.Equal(t, "moderated content", updated.Content())
	})

	t.Run("missing post is reported as not found", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")

		_, err := fx.svc.UpdatePost(ctx, UpdatePostCommand{
			PostID:    9999,
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
			Content:   "whatever",
		})
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestConversationService_LockTopic(t *testing.T) {
	ctx := context.Background()

	t.Run("requires the lock-topics permission", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		topic := fx.seedTopic(t, member.ID(), "Thread", false)

		err := fx.svc.LockTopic(ctx, LockTopicCommand{
			TopicID:   topic.ID(),
			UserID:    member.ID(),
			ContextID: fx.ltiCtx.ID(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("moderator locks a topic", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		moderator := fx.newModerator(t, "Mona")
		topic := fx.seedTopic(t, member.ID(), "Thread", false)

		require.NoError(t, fx.svc.LockTopic(ctx, LockTopicCommand{
			TopicID:   topic.ID(),
			UserID:    moderator.ID(),
			ContextID: fx.ltiCtx.ID(),
		}))

		saved, err := fx.topics.GetByID(ctx, topic.ID())
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.True(t, saved.IsLocked())
	})
}
