package forum

import (
	"context"
	"fmt"

	"github.com/openfun/ashley-sub000/internal/domain/activity"
	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/lti"
	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/domain/shared/events"
	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

// ConversationService carries the minimal topic and post operations the
// permission gates, lock lifecycle and activity tracking act on.
type ConversationService struct {
	forumRepo   forum.Repository
	topicRepo   forum.TopicRepository
	postRepo    forum.PostRepository
	contextRepo lticontext.Repository
	enforcer    permission.Enforcer
	emitter     *activityEmitter
	logger      logger.Interface
}

func NewConversationService(
	forumRepo forum.Repository,
	topicRepo forum.TopicRepository,
	postRepo forum.PostRepository,
	contextRepo lticontext.Repository,
	userRepo user.Repository,
	consumerRepo lti.ConsumerRepository,
	enforcer permission.Enforcer,
	publisher events.EventPublisher,
	log logger.Interface,
) *ConversationService {
	return &ConversationService{
		forumRepo:   forumRepo,
		topicRepo:   topicRepo,
		postRepo:    postRepo,
		contextRepo: contextRepo,
		enforcer:    enforcer,
		emitter:     newActivityEmitter(userRepo, consumerRepo, publisher, log),
		logger:      log,
	}
}

type ViewForumQuery struct {
	ForumID     uint
	UserID      uint
	IsSuperuser bool
	ContextID   uint
	Locale      string
}

type ForumPage struct {
	Forum  *forum.Forum
	Topics []*forum.Topic
	Locked bool
}

func (s *ConversationService) ViewForum(ctx context.Context, query ViewForumQuery) (*ForumPage, error) {
	f, err := resolveForumInContext(ctx, s.forumRepo, query.ForumID, query.ContextID)
	if err != nil {
		return nil, err
	}
	if !query.IsSuperuser {
		if err := requirePermission(ctx, s.enforcer, query.UserID, f.ID(), permission.CanReadForum); err != nil {
			return nil, err
		}
	}

	topics, err := s.topicRepo.ListByForum(ctx, f.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	ltiCtx, err := requireContext(ctx, s.contextRepo, query.ContextID)
	if err != nil {
		return nil, err
	}

	if actor, ok := s.emitter.actor(ctx, query.UserID); ok {
		s.emitter.emit(activity.NewForumViewed(actor, f.ID(), f.Name(), query.Locale, ltiCtx.LTIID()))
	}

	return &ForumPage{
		Forum:  f,
		Topics: topics,
		Locked: ltiCtx.IsMarkedLocked(),
	}, nil
}

type CreateTopicCommand struct {
	ForumID   uint
	UserID    uint
	ContextID uint
	Subject   string
	Content   string
	Locale    string
}

func (s *ConversationService) CreateTopic(ctx context.Context, cmd CreateTopicCommand) (*forum.Topic, error) {
	f, err := resolveForumInContext(ctx, s.forumRepo, cmd.ForumID, cmd.ContextID)
	if err != nil {
		return nil, err
	}
	if err := requirePermission(ctx, s.enforcer, cmd.UserID, f.ID(), permission.CanStartNewTopics); err != nil {
		return nil, err
	}

	subject := utils.SanitizeText(cmd.Subject)
	topic, err := forum.NewTopic(f.ID(), cmd.UserID, subject)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	post, err := forum.NewPost(topic.ID(), cmd.UserID, cmd.Content)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.applyApproval(ctx, cmd.UserID, f.ID(), post); err != nil {
		return nil, err
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create first post: %w", err)
	}

	s.emitTopicEvent(ctx, activity.NewTopicCreated, cmd.UserID, topic, f, cmd.ContextID, cmd.Locale)
	return topic, nil
}

// PostsPerPage is the page size the frontend renders topics with. Topic
// view statements report their pagination against it.
const PostsPerPage = 15

type ViewTopicQuery struct {
	TopicID     uint
	UserID      uint
	IsSuperuser bool
	ContextID   uint
	Locale      string
	// Page is the 1-based page the user is viewing. Values below 1 are
	// treated as the first page.
	Page int
}

type TopicPage struct {
	Topic  *forum.Topic
	Posts  []*forum.Post
	Locked bool
}

func (s *ConversationService) ViewTopic(ctx context.Context, query ViewTopicQuery) (*TopicPage, error) {
	topic, f, err := s.resolveTopic(ctx, query.TopicID, query.ContextID)
	if err != nil {
		return nil, err
	}
	if !query.IsSuperuser {
		if err := requirePermission(ctx, s.enforcer, query.UserID, f.ID(), permission.CanReadForum); err != nil {
			return nil, err
		}
	}

	posts, err := s.postRepo.ListByTopic(ctx, topic.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if actor, ok := s.emitter.actor(ctx, query.UserID); ok {
		e := activity.NewTopicViewed(actor, topic.ID(), topic.Subject(), query.Locale, s.contextLTIID(ctx, query.ContextID), f.LTIID().String(), f.Name())
		e.Pagination = &activity.Pagination{
			Page:       max(query.Page, 1),
			TotalItems: len(posts),
			TotalPages: (len(posts)-1)/PostsPerPage + 1,
		}
		s.emitter.emit(e)
	}

	return &TopicPage{
		Topic:  topic,
		Posts:  posts,
		Locked: topic.IsLocked(),
	}, nil
}

type ReplyCommand struct {
	TopicID   uint
	UserID    uint
	ContextID uint
	Content   string
	Locale    string
}

func (s *ConversationService) Reply(ctx context.Context, cmd ReplyCommand) (*forum.Post, error) {
	topic, f, err := s.resolveTopic(ctx, cmd.TopicID, cmd.ContextID)
	if err != nil {
		return nil, err
	}
	if err := requirePermission(ctx, s.enforcer, cmd.UserID, f.ID(), permission.CanReplyToTopics); err != nil {
		return nil, err
	}
	if topic.IsLocked() {
		if err := requirePermission(ctx, s.enforcer, cmd.UserID, f.ID(), permission.CanReplyToLockedTopics); err != nil {
			return nil, err
		}
	}

	post, err := forum.NewPost(topic.ID(), cmd.UserID, cmd.Content)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.applyApproval(ctx, cmd.UserID, f.ID(), post); err != nil {
		return nil, err
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.emitPostEvent(ctx, activity.NewPostCreated, cmd.UserID, post, topic, f, cmd.ContextID, cmd.Locale)
	return post, nil
}

type UpdatePostCommand struct {
	PostID    uint
	UserID    uint
	ContextID uint
	Content   string
	Locale    string
}

func (s *ConversationService) UpdatePost(ctx context.Context, cmd UpdatePostCommand) (*forum.Post, error) {
	post, err := s.postRepo.GetByID(ctx, cmd.PostID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, errors.NewNotFoundError("post not found")
	}

	topic, f, err := s.resolveTopic(ctx, post.TopicID(), cmd.ContextID)
	if err != nil {
		return nil, err
	}

	// Authors may edit their own posts; everyone else needs the blanket
	// edit permission moderators hold.
	codename := permission.CanEditPosts
	if post.PosterID() == cmd.UserID {
		codename = permission.CanEditOwnPosts
	}
	if err := requirePermission(ctx, s.enforcer, cmd.UserID, f.ID(), codename); err != nil {
		return nil, err
	}

	if err := post.UpdateContent(cmd.Content); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.emitPostEvent(ctx, activity.NewPostUpdated, cmd.UserID, post, topic, f, cmd.ContextID, cmd.Locale)
	return post, nil
}

type LockTopicCommand struct {
	TopicID   uint
	UserID    uint
	ContextID uint
}

func (s *ConversationService) LockTopic(ctx context.Context, cmd LockTopicCommand) error {
	topic, f, err := s.resolveTopic(ctx, cmd.TopicID, cmd.ContextID)
	if err != nil {
		return err
	}
	if err := requirePermission(ctx, s.enforcer, cmd.UserID, f.ID(), permission.CanLockTopics); err != nil {
		return err
	}

	topic.LockTopic()
	if err := s.topicRepo.Update(ctx, topic); err != nil {
		return fmt.Errorf("failed to lock topic: %w", err)
	}

	s.logger.Infow("topic locked", "topic_id", topic.ID(), "user_id", cmd.UserID)
	return nil
}

func (s *ConversationService) resolveTopic(ctx context.Context, topicID, contextID uint) (*forum.Topic, *forum.Forum, error) {
	topic, err := s.topicRepo.GetByID(ctx, topicID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get topic: %w", err)
	}
	if topic == nil {
		return nil, nil, errors.NewNotFoundError("topic not found")
	}

	f, err := resolveForumInContext(ctx, s.forumRepo, topic.ForumID(), contextID)
	if err != nil {
		return nil, nil, err
	}
	return topic, f, nil
}

// applyApproval holds back posts from users who lack the
// post-without-approval permission.
func (s *ConversationService) applyApproval(ctx context.Context, userID, forumID uint, post *forum.Post) error {
	approved, err := s.enforcer.HasPermission(ctx, userID, forumID, permission.CanPostWithoutApproval)
	if err != nil {
		return err
	}
	if !approved {
		post.HoldForApproval()
	}
	return nil
}

type topicEventFactory func(actor activity.Actor, topicID uint, subject, locale, contextLTIID, forumLTIID, forumName string) activity.Event

func (s *ConversationService) emitTopicEvent(ctx context.Context, factory topicEventFactory, userID uint, topic *forum.Topic, f *forum.Forum, contextID uint, locale string) {
	actor, ok := s.emitter.actor(ctx, userID)
	if !ok {
		return
	}
	contextLTIID := s.contextLTIID(ctx, contextID)
	s.emitter.emit(factory(actor, topic.ID(), topic.Subject(), locale, contextLTIID, f.LTIID().String(), f.Name()))
}

type postEventFactory func(actor activity.Actor, postID uint, name, locale, contextLTIID, forumLTIID, topicSubject string) activity.Event

func (s *ConversationService) emitPostEvent(ctx context.Context, factory postEventFactory, userID uint, post *forum.Post, topic *forum.Topic, f *forum.Forum, contextID uint, locale string) {
	actor, ok := s.emitter.actor(ctx, userID)
	if !ok {
		return
	}
	contextLTIID := s.contextLTIID(ctx, contextID)
	s.emitter.emit(factory(actor, post.ID(), topic.Subject(), locale, contextLTIID, f.LTIID().String(), topic.Subject()))
}

func (s *ConversationService) contextLTIID(ctx context.Context, contextID uint) string {
	ltiCtx, err := s.contextRepo.GetByID(ctx, contextID)
	if err != nil || ltiCtx == nil {
		return ""
	}
	return ltiCtx.LTIID()
}
