package forum

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	domainPermission "github.com/openfun/ashley-sub000/internal/domain/permission"
	infraPermission "github.com/openfun/ashley-sub000/internal/infrastructure/permission"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/infrastructure/repository"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

// The lock lifecycle runs against the persistent enforcer and the real
// lock store: the transition rewrites casbin rows around the enforcer
// and relies on Reload to make it visible.
type lockFixture struct {
	lockUC   *LockCourseUseCase
	unlockUC *UnlockCourseUseCase
	enforcer domainPermission.Enforcer
	contexts lticontext.Repository
	ltiCtx   *lticontext.LTIContext
	forums   []*forum.Forum
	adminID  uint
	memberID uint
}

func setupLockCourse(t *testing.T) *lockFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.LTIContextModel{},
		&models.ForumModel{},
		&models.ForumLTIContextModel{},
	))

	log := logger.NewLogger()
	ctx := context.Background()

	contextRepo := repository.NewLTIContextRepository(db)
	forumRepo := repository.NewForumRepository(db)

	enforcer, err := infraPermission.NewEnforcer(db, log)
	require.NoError(t, err)
	lockStore := infraPermission.NewLockStore(db, log)

	ltiCtx, err := lticontext.NewLTIContext("moodle", "course-v1:edX+Demo+01")
	require.NoError(t, err)
	require.NoError(t, contextRepo.Create(ctx, ltiCtx))

	instructorGroup := ltiCtx.RoleGroupName("instructor")
	forums := make([]*forum.Forum, 0, 2)
	for _, name := range []string{"General", "Homework"} {
		f, err := forum.NewForum(uuid.New(), forum.TypePost, name)
		require.NoError(t, err)
		require.NoError(t, forumRepo.Create(ctx, f))
		require.NoError(t, forumRepo.AttachContext(ctx, f.ID(), f.LTIID(), ltiCtx.ID()))

		for _, codename := range domainPermission.BasePermissions() {
			require.NoError(t, enforcer.Grant(ctx, ltiCtx.BaseGroupName(), f.ID(), codename))
		}
		for _, codename := range domainPermission.AdminPermissions() {
			require.NoError(t, enforcer.Grant(ctx, instructorGroup, f.ID(), codename))
		}
		forums = append(forums, f)
	}

	const adminID, memberID = 1, 2
	require.NoError(t, enforcer.AddUserToGroup(ctx, adminID, ltiCtx.BaseGroupName()))
	require.NoError(t, enforcer.AddUserToGroup(ctx, adminID, instructorGroup))
	require.NoError(t, enforcer.AddUserToGroup(ctx, memberID, ltiCtx.BaseGroupName()))

	return &lockFixture{
		lockUC:   NewLockCourseUseCase(forumRepo, contextRepo, enforcer, lockStore, log),
		unlockUC: NewUnlockCourseUseCase(forumRepo, contextRepo, enforcer, lockStore, log),
		enforcer: enforcer,
		contexts: contextRepo,
		ltiCtx:   ltiCtx,
		forums:   forums,
		adminID:  adminID,
		memberID: memberID,
	}
}

func (fx *lockFixture) isLocked(t *testing.T) bool {
	t.Helper()
	saved, err := fx.contexts.GetByID(context.Background(), fx.ltiCtx.ID())
	require.NoError(t, err)
	require.NotNil(t, saved)
	return saved.IsMarkedLocked()
}

func TestLockCourseUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("requires the lock-course permission", func(t *testing.T) {
		fx := setupLockCourse(t)

		err := fx.lockUC.Execute(ctx, LockCourseCommand{
			ForumID:   fx.forums[0].ID(),
			UserID:    fx.memberID,
			ContextID: fx.ltiCtx.ID(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
		assert.False(t, fx.isLocked(t))
	})

	t.Run("lock strips base writes on every forum of the context", func(t *testing.T) {
		fx := setupLockCourse(t)

		require.NoError(t, fx.lockUC.Execute(ctx, LockCourseCommand{
			ForumID:   fx.forums[0].ID(),
			UserID:    fx.adminID,
			ContextID: fx.ltiCtx.ID(),
		}))
		assert.True(t, fx.isLocked(t))

		for _, f := range fx.forums {
			perms, err := fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.BaseGroupName(), f.ID())
			require.NoError(t, err)
			assert.ElementsMatch(t, domainPermission.BaseReadPermissions(), perms)

			canRead, err := fx.enforcer.HasPermission(ctx, fx.memberID, f.ID(), domainPermission.CanReadForum)
			require.NoError(t, err)
			assert.True(t, canRead)

			canReply, err := fx.enforcer.HasPermission(ctx, fx.memberID, f.ID(), domainPermission.CanReplyToTopics)
			require.NoError(t, err)
			assert.False(t, canReply)

			// Privileged roles keep writing through their own group.
			canReply, err = fx.enforcer.HasPermission(ctx, fx.adminID, f.ID(), domainPermission.CanReplyToTopics)
			require.NoError(t, err)
			assert.True(t, canReply)
		}
	})

	t.Run("unlock restores the full base set", func(t *testing.T) {
		fx := setupLockCourse(t)

		require.NoError(t, fx.lockUC.Execute(ctx, LockCourseCommand{
			ForumID:   fx.forums[0].ID(),
			UserID:    fx.adminID,
			ContextID: fx.ltiCtx.ID(),
		}))
		require.NoError(t, fx.unlockUC.Execute(ctx, UnlockCourseCommand{
			ForumID:   fx.forums[0].ID(),
			UserID:    fx.adminID,
			ContextID: fx.ltiCtx.ID(),
		}))
		assert.False(t, fx.isLocked(t))

		for _, f := range fx.forums {
			perms, err := fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.BaseGroupName(), f.ID())
			require.NoError(t, err)
			assert.ElementsMatch(t, domainPermission.BasePermissions(), perms)
		}
	})

	t.Run("transitions are idempotent", func(t *testing.T) {
		fx := setupLockCourse(t)

		lock := LockCourseCommand{ForumID: fx.forums[0].ID(), UserID: fx.adminID, ContextID: fx.ltiCtx.ID()}
		unlock := UnlockCourseCommand{ForumID: fx.forums[0].ID(), UserID: fx.adminID, ContextID: fx.ltiCtx.ID()}

		require.NoError(t, fx.lockUC.Execute(ctx, lock))
		require.NoError(t, fx.lockUC.Execute(ctx, lock))
		require.NoError(t, fx.unlockUC.Execute(ctx, unlock))
		require.NoError(t, fx.unlockUC.Execute(ctx, unlock))

		for _, f := range fx.forums {
			perms, err := fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.BaseGroupName(), f.ID())
			require.NoError(t, err)
			assert.ElementsMatch(t, domainPermission.BasePermissions(), perms)
		}
	})

	t.Run("unlocking an open course only confirms the flag", func(t *testing.T) {
		fx := setupLockCourse(t)

		require.NoError(t, fx.unlockUC.Execute(ctx, UnlockCourseCommand{
			ForumID:   fx.forums[0].ID(),
			UserID:    fx.adminID,
			ContextID: fx.ltiCtx.ID(),
		}))
		assert.False(t, fx.isLocked(t))

		perms, err := fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.BaseGroupName(), fx.forums[0].ID())
		require.NoError(t, err)
		assert.ElementsMatch(t, domainPermission.BasePermissions(), perms)
	})
}
