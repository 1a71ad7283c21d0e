package permission

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
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	infraPermission "github.com/openfun/ashley-sub000/internal/infrastructure/permission"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/infrastructure/repository"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

type syncFixture struct {
	uc       *SyncGroupPermissionsUseCase
	enforcer permission.Enforcer
	contexts lticontext.Repository
	ltiCtx   *lticontext.LTIContext
	forum    *forum.Forum
}

func setupSync(t *testing.T) *syncFixture {
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

	enforcer, err := infraPermission.NewMemoryEnforcer(log)
	require.NoError(t, err)

	ltiCtx, err := lticontext.NewLTIContext("moodle", "course-v1:edX+Demo+01")
	require.NoError(t, err)
	require.NoError(t, contextRepo.Create(ctx, ltiCtx))

	f, err := forum.NewForum(uuid.New(), forum.TypePost, "Demo forum")
	require.NoError(t, err)
	require.NoError(t, forumRepo.Create(ctx, f))
	require.NoError(t, forumRepo.AttachContext(ctx, f.ID(), f.LTIID(), ltiCtx.ID()))

	uc := NewSyncGroupPermissionsUseCase(forumRepo, contextRepo, enforcer,
		permission.DefaultRolePermissions(), log)

	return &syncFixture{
		uc:       uc,
		enforcer: enforcer,
		contexts: contextRepo,
		ltiCtx:   ltiCtx,
		forum:    f,
	}
}

func TestSyncGroupPermissionsUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("dry run reports without touching grants", func(t *testing.T) {
		fx := setupSync(t)

		result, err := fx.uc.Execute(ctx, SyncGroupPermissionsCommand{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.ForumsVisited)
		assert.Positive(t, result.Granted)
		assert.Zero(t, result.Revoked)

		held, err := fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.BaseGroupName(), fx.forum.ID())
		require.NoError(t, err)
		assert.Empty(t, held)
	})

	t.Run("apply restores the declared sets", func(t *testing.T) {
		fx := setupSync(t)

		_, err := fx.uc.Execute(ctx, SyncGroupPermissionsCommand{Apply: true})
		require.NoError(t, err)

		held, err := fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.BaseGroupName(), fx.forum.ID())
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.BasePermissions(), held)

		held, err = fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.RoleGroupName("instructor"), fx.forum.ID())
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.AdminPermissions(), held)
	})

	t.Run("a second run is a no-op", func(t *testing.T) {
		fx := setupSync(t)

		_, err := fx.uc.Execute(ctx, SyncGroupPermissionsCommand{Apply: true})
		require.NoError(t, err)

		result, err := fx.uc.Execute(ctx, SyncGroupPermissionsCommand{Apply: true})
		require.NoError(t, err)
		assert.Zero(t, result.Granted)
		assert.Zero(t, result.Revoked)
	})

	t.Run("remove-extra revokes undeclared grants", func(t *testing.T) {
		fx := setupSync(t)

		_, err := fx.uc.Execute(ctx, SyncGroupPermissionsCommand{Apply: true})
		require.NoError(t, err)

		// The base group must never hold an admin codename.
		require.NoError(t, fx.enforcer.Grant(ctx, fx.ltiCtx.BaseGroupName(), fx.forum.ID(), permission.CanLockCourse))

		result, err := fx.uc.Execute(ctx, SyncGroupPermissionsCommand{Apply: true, RemoveExtra: true})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Revoked)

		held, err := fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.BaseGroupName(), fx.forum.ID())
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.BasePermissions(), held)
	})

	t.Run("locked contexts keep the read-only base set", func(t *testing.T) {
		fx := setupSync(t)
		require.NoError(t, fx.contexts.SetLockFlag(ctx, fx.ltiCtx.ID(), true))

		_, err := fx.uc.Execute(ctx, SyncGroupPermissionsCommand{Apply: true})
		require.NoError(t, err)

		held, err := fx.enforcer.GroupPermissions(ctx, fx.ltiCtx.BaseGroupName(), fx.forum.ID())
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.BaseReadPermissions(), held)
	})
}
