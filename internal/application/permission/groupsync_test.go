package permission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	infraPermission "github.com/openfun/ashley-sub000/internal/infrastructure/permission"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

func newGroupSync(t *testing.T) (*GroupSyncService, permission.Enforcer) {
	t.Helper()
	enforcer, err := infraPermission.NewMemoryEnforcer(logger.NewLogger())
	require.NoError(t, err)
	return NewGroupSyncService(enforcer, permission.DefaultRolePermissions(), logger.NewLogger()), enforcer
}

func reconstructContext(id uint, locked bool) *lticontext.LTIContext {
	return lticontext.ReconstructLTIContext(id, "moodle", "course-v1:fun+101+session01", locked, time.Now(), time.Now())
}

func TestGroupSyncService_SyncUserGroups(t *testing.T) {
	ctx := context.Background()

	t.Run("joins the base group and one group per role", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		ltiCtx := reconstructContext(1, false)

		require.NoError(t, svc.SyncUserGroups(ctx, 7, ltiCtx, []string{"instructor"}))

		groups, err := enforcer.UserGroups(ctx, 7)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"cg:1", "cg:1:role:instructor"}, groups)
	})

	t.Run("is idempotent", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		ltiCtx := reconstructContext(1, false)

		require.NoError(t, svc.SyncUserGroups(ctx, 7, ltiCtx, []string{"student"}))
		require.NoError(t, svc.SyncUserGroups(ctx, 7, ltiCtx, []string{"student"}))

		groups, err := enforcer.UserGroups(ctx, 7)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"cg:1", "cg:1:role:student"}, groups)
	})

	t.Run("leaves stale role groups when roles change", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		ltiCtx := reconstructContext(1, false)

		require.NoError(t, svc.SyncUserGroups(ctx, 7, ltiCtx, []string{"instructor"}))
		require.NoError(t, svc.SyncUserGroups(ctx, 7, ltiCtx, []string{"student"}))

		groups, err := enforcer.UserGroups(ctx, 7)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"cg:1", "cg:1:role:student"}, groups)
	})

	t.Run("moderator membership survives role syncs", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		ltiCtx := reconstructContext(1, false)

		require.NoError(t, enforcer.AddUserToGroup(ctx, 7, ltiCtx.ModeratorGroupName()))
		require.NoError(t, svc.SyncUserGroups(ctx, 7, ltiCtx, []string{"student"}))

		groups, err := enforcer.UserGroups(ctx, 7)
		require.NoError(t, err)
		assert.Contains(t, groups, "cg:1:role:moderator")
	})

	t.Run("groups of other contexts are untouched", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		thisCtx := reconstructContext(1, false)
		otherCtx := reconstructContext(2, false)

		require.NoError(t, svc.SyncUserGroups(ctx, 7, otherCtx, []string{"instructor"}))
		require.NoError(t, svc.SyncUserGroups(ctx, 7, thisCtx, []string{"student"}))

		groups, err := enforcer.UserGroups(ctx, 7)
		require.NoError(t, err)
		assert.Contains(t, groups, "cg:2")
		assert.Contains(t, groups, "cg:2:role:instructor")
	})
}

func TestGroupSyncService_InitForumPermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("grants the base set and role sets on a new forum", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		ltiCtx := reconstructContext(1, false)

		require.NoError(t, svc.InitForumPermissions(ctx, 10, ltiCtx))

		basePerms, err := enforcer.GroupPermissions(ctx, "cg:1", 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.BasePermissions(), basePerms)

		instructorPerms, err := enforcer.GroupPermissions(ctx, "cg:1:role:instructor", 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.AdminPermissions(), instructorPerms)

		moderatorPerms, err := enforcer.GroupPermissions(ctx, "cg:1:role:moderator", 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.AdminPermissions(), moderatorPerms)
	})

	t.Run("role groups are granted before anyone with that role launches", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		ltiCtx := reconstructContext(1, false)

		// The forum is provisioned by a plain student launch. An
		// instructor arriving later must find their group already
		// empowered.
		require.NoError(t, svc.SyncUserGroups(ctx, 7, ltiCtx, []string{"student"}))
		require.NoError(t, svc.InitForumPermissions(ctx, 10, ltiCtx))

		require.NoError(t, svc.SyncUserGroups(ctx, 8, ltiCtx, []string{"instructor"}))

		canLock, err := enforcer.HasPermission(ctx, 8, 10, permission.CanLockCourse)
		require.NoError(t, err)
		assert.True(t, canLock)

		canRename, err := enforcer.HasPermission(ctx, 8, 10, permission.CanRenameForum)
		require.NoError(t, err)
		assert.True(t, canRename)
	})

	t.Run("new forum in a locked context starts read-only for the base group", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		ltiCtx := reconstructContext(1, true)

		require.NoError(t, svc.InitForumPermissions(ctx, 10, ltiCtx))

		basePerms, err := enforcer.GroupPermissions(ctx, "cg:1", 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.BaseReadPermissions(), basePerms)
	})
}

func TestGroupSyncService_ReconcileLockState(t *testing.T) {
	ctx := context.Background()

	t.Run("strips writes left behind on a locked context", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		open := reconstructContext(1, false)
		require.NoError(t, svc.InitForumPermissions(ctx, 10, open))

		locked := reconstructContext(1, true)
		require.NoError(t, svc.ReconcileLockState(ctx, locked, []uint{10}))

		perms, err := enforcer.GroupPermissions(ctx, "cg:1", 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.BaseReadPermissions(), perms)
	})

	t.Run("restores missing base permissions on an open context", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		locked := reconstructContext(1, true)
		require.NoError(t, svc.InitForumPermissions(ctx, 10, locked))

		open := reconstructContext(1, false)
		require.NoError(t, svc.ReconcileLockState(ctx, open, []uint{10}))

		perms, err := enforcer.GroupPermissions(ctx, "cg:1", 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.BasePermissions(), perms)
	})

	t.Run("no-op when the grants already match the flag", func(t *testing.T) {
		svc, enforcer := newGroupSync(t)
		open := reconstructContext(1, false)
		require.NoError(t, svc.InitForumPermissions(ctx, 10, open))

		require.NoError(t, svc.ReconcileLockState(ctx, open, []uint{10}))

		perms, err := enforcer.GroupPermissions(ctx, "cg:1", 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, permission.BasePermissions(), perms)
	})
}
