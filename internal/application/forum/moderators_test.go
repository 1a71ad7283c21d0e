package forum

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainPermission "github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

func TestModeratorService(t *testing.T) {
	ctx := context.Background()

	newService := func(fx *conversationFixture) *ModeratorService {
		return NewModeratorService(fx.forums, fx.contexts, fx.users, fx.enforcer, logger.NewLogger())
	}

	t.Run("promotion grants the moderator permissions", func(t *testing.T) {
		fx := setupConversation(t)
		admin := fx.newModerator(t, "Mona")
		target := fx.newMember(t, "Alice")
		svc := newService(fx)

		allowed, err := fx.enforcer.HasPermission(ctx, target.ID(), fx.forum.ID(), domainPermission.CanEditPosts)
		require.NoError(t, err)
		require.False(t, allowed)

		require.NoError(t, svc.Promote(ctx, ManageModeratorCommand{
			ForumID:      fx.forum.ID(),
			UserID:       admin.ID(),
			ContextID:    fx.ltiCtx.ID(),
			TargetUserID: target.ID(),
		}))

		allowed, err = fx.enforcer.HasPermission(ctx, target.ID(), fx.forum.ID(), domainPermission.CanEditPosts)
		require.NoError(t, err)
		assert.True(t, allowed)

		groups, err := fx.enforcer.UserGroups(ctx, target.ID())
		require.NoError(t, err)
		assert.Contains(t, groups, fx.ltiCtx.ModeratorGroupName())
	})

	t.Run("revocation removes them again", func(t *testing.T) {
		fx := setupConversation(t)
		admin := fx.newModerator(t, "Mona")
		target := fx.newMember(t, "Alice")
		svc := newService(fx)

		require.NoError(t, svc.Promote(ctx, ManageModeratorCommand{
			ForumID:      fx.forum.ID(),
			UserID:       admin.ID(),
			ContextID:    fx.ltiCtx.ID(),
			TargetUserID: target.ID(),
		}))
		require.NoError(t, svc.Revoke(ctx, ManageModeratorCommand{
			ForumID:      fx.forum.ID(),
			UserID:       admin.ID(),
			ContextID:    fx.ltiCtx.ID(),
			TargetUserID: target.ID(),
		}))

		allowed, err := fx.enforcer.HasPermission(ctx, target.ID(), fx.forum.ID(), domainPermission.CanEditPosts)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("list returns the moderator group members", func(t *testing.T) {
		fx := setupConversation(t)
		admin := fx.newModerator(t, "Mona")
		first := fx.newMember(t, "Alice")
		second := fx.newMember(t, "Bob")
		svc := newService(fx)

		for _, target := range []uint{first.ID(), second.ID()} {
			require.NoError(t, svc.Promote(ctx, ManageModeratorCommand{
				ForumID:      fx.forum.ID(),
				UserID:       admin.ID(),
				ContextID:    fx.ltiCtx.ID(),
				TargetUserID: target,
			}))
		}

		members, err := svc.List(ctx, ManageModeratorCommand{
			ForumID:   fx.forum.ID(),
			UserID:    admin.ID(),
			ContextID: fx.ltiCtx.ID(),
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{admin.ID(), first.ID(), second.ID()}, members)
	})

	t.Run("members cannot manage moderators", func(t *testing.T) {
		fx := setupConversation(t)
		member := fx.newMember(t, "Alice")
		other := fx.newMember(t, "Bob")
		svc := newService(fx)

		err := svc.Promote(ctx, ManageModeratorCommand{
			ForumID:      fx.forum.ID(),
			UserID:       member.ID(),
			ContextID:    fx.ltiCtx.ID(),
			TargetUserID: other.ID(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("promoting an unknown user fails", func(t *testing.T) {
		fx := setupConversation(t)
		admin := fx.newModerator(t, "Mona")
		svc := newService(fx)

		err := svc.Promote(ctx, ManageModeratorCommand{
			ForumID:      fx.forum.ID(),
			UserID:       admin.ID(),
			ContextID:    fx.ltiCtx.ID(),
			TargetUserID: 9999,
		})
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
}
