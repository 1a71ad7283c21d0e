package http

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appForum "github.com/openfun/ashley-sub000/internal/application/forum"
	"github.com/openfun/ashley-sub000/internal/application/launch"
	appPermission "github.com/openfun/ashley-sub000/internal/application/permission"
	appUser "github.com/openfun/ashley-sub000/internal/application/user"
	"github.com/openfun/ashley-sub000/internal/domain/lti"
	domainPermission "github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/domain/shared/events"
	"github.com/openfun/ashley-sub000/internal/infrastructure/auth"
	"github.com/openfun/ashley-sub000/internal/infrastructure/config"
	"github.com/openfun/ashley-sub000/internal/infrastructure/nonce"
	infraPermission "github.com/openfun/ashley-sub000/internal/infrastructure/permission"
	"github.com/openfun/ashley-sub000/internal/infrastructure/repository"
	"github.com/openfun/ashley-sub000/internal/interfaces/http/handlers"
	"github.com/openfun/ashley-sub000/internal/interfaces/http/middleware"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

// Container wires repositories, services and handlers for the router.
// Construction order follows the dependency direction: persistence,
// policy enforcement, use cases, then HTTP handlers.
type Container struct {
	LaunchHandler       *handlers.LaunchHandler
	ForumHandler        *handlers.ForumHandler
	ConversationHandler *handlers.ConversationHandler
	ModeratorHandler    *handlers.ModeratorHandler
	ProfileHandler      *handlers.ProfileHandler
	SessionMiddleware   *middleware.SessionMiddleware

	SyncGroupPermissionsUC *appPermission.SyncGroupPermissionsUseCase
}

// NewContainer builds the full dependency graph. redisClient may be nil,
// in which case nonce replay tracking falls back to the in-process store;
// that is only acceptable for single-instance deployments.
func NewContainer(db *gorm.DB, redisClient *redis.Client, dispatcher events.EventDispatcher, cfg *config.Config, log logger.Interface) (*Container, error) {
	consumerRepo := repository.NewConsumerRepository(db)
	passportRepo := repository.NewPassportRepository(db)
	userRepo := repository.NewUserRepository(db)
	contextRepo := repository.NewLTIContextRepository(db)
	forumRepo := repository.NewForumRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	postRepo := repository.NewPostRepository(db)

	enforcer, err := infraPermission.NewEnforcer(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build enforcer: %w", err)
	}
	lockStore := infraPermission.NewLockStore(db, log)

	nonceTTL := time.Duration(cfg.LTI.NonceTTLSeconds) * time.Second
	var nonceStore lti.NonceStore
	if redisClient != nil {
		nonceStore = nonce.NewRedisStore(redisClient, nonceTTL)
	} else {
		log.Warn("no redis configured, using in-process nonce store")
		nonceStore = nonce.NewMemoryStore(nonceTTL)
	}

	clockSkew := time.Duration(cfg.LTI.ClockSkewSeconds) * time.Second
	verifier := lti.NewVerifier(consumerRepo, passportRepo, nonceStore, clockSkew, log)

	sessions := auth.NewSessionService(cfg.Session.JWTSecret, cfg.Session.ExpMinutes)

	rolePerms := domainPermission.DefaultRolePermissions()
	groupSync := appPermission.NewGroupSyncService(enforcer, rolePerms, log)

	launchUC := launch.NewProcessLaunchUseCase(verifier, userRepo, contextRepo, forumRepo, groupSync, sessions, log)
	listForumsUC := appForum.NewListReadableForumsUseCase(forumRepo, enforcer, log)
	renameUC := appForum.NewRenameForumUseCase(forumRepo, enforcer, log)
	archiveUC := appForum.NewArchiveForumUseCase(forumRepo, enforcer, log)
	lockCourseUC := appForum.NewLockCourseUseCase(forumRepo, contextRepo, enforcer, lockStore, log)
	unlockCourseUC := appForum.NewUnlockCourseUseCase(forumRepo, contextRepo, enforcer, lockStore, log)
	conversations := appForum.NewConversationService(forumRepo, topicRepo, postRepo, contextRepo, userRepo, consumerRepo, enforcer, dispatcher, log)
	moderators := appForum.NewModeratorService(forumRepo, contextRepo, userRepo, enforcer, log)
	setUsernameUC := appUser.NewSetPublicUsernameUseCase(userRepo, log)
	syncPermsUC := appPermission.NewSyncGroupPermissionsUseCase(forumRepo, contextRepo, enforcer, rolePerms, log)

	return &Container{
		LaunchHandler:       handlers.NewLaunchHandler(launchUC, cfg.Server.BaseURL, cfg.Session, log),
		ForumHandler:        handlers.NewForumHandler(listForumsUC, renameUC, archiveUC, lockCourseUC, unlockCourseUC, log),
		ConversationHandler: handlers.NewConversationHandler(conversations, cfg.Session.LanguageCookie, log),
		ModeratorHandler:    handlers.NewModeratorHandler(moderators, log),
		ProfileHandler:      handlers.NewProfileHandler(setUsernameUC, log),
		SessionMiddleware:   middleware.NewSessionMiddleware(sessions, userRepo, log),

		SyncGroupPermissionsUC: syncPermsUC,
	}, nil
}
