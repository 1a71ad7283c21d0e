package forum

import (
	"context"
	"fmt"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

type ManageModeratorCommand struct {
	ForumID   uint
	UserID    uint
	ContextID uint
	// TargetUserID joins or leaves the context's moderator group.
	TargetUserID uint
}

// ModeratorService manages the internal-only moderator group of a
// context. Membership is granted from inside the tool and survives role
// syncs; the group holds the admin permission set on the context's
// forums.
type ModeratorService struct {
	forumRepo   forum.Repository
	contextRepo lticontext.Repository
	userRepo    user.Repository
	enforcer    permission.Enforcer
	logger      logger.Interface
}

func NewModeratorService(
	forumRepo forum.Repository,
	contextRepo lticontext.Repository,
	userRepo user.Repository,
	enforcer permission.Enforcer,
	log logger.Interface,
) *ModeratorService {
	return &ModeratorService{
		forumRepo:   forumRepo,
		contextRepo: contextRepo,
		userRepo:    userRepo,
		enforcer:    enforcer,
		logger:      log,
	}
}

func (s *ModeratorService) Promote(ctx context.Context, cmd ManageModeratorCommand) error {
	ltiCtx, err := s.authorize(ctx, cmd)
	if err != nil {
		return err
	}

	target, err := s.userRepo.GetByID(ctx, cmd.TargetUserID)
	if err != nil {
		return fmt.Errorf("failed to get target user: %w", err)
	}
	if target == nil {
		return errors.NewNotFoundError("user not found")
	}

	if err := s.enforcer.AddUserToGroup(ctx, target.ID(), ltiCtx.ModeratorGroupName()); err != nil {
		return fmt.Errorf("failed to promote moderator: %w", err)
	}

	s.logger.Infow("moderator promoted",
		"context_id", ltiCtx.ID(), "target_user_id", target.ID(), "by_user_id", cmd.UserID)
	return nil
}

func (s *ModeratorService) Revoke(ctx context.Context, cmd ManageModeratorCommand) error {
	ltiCtx, err := s.authorize(ctx, cmd)
	if err != nil {
		return err
	}

	if err := s.enforcer.RemoveUserFromGroup(ctx, cmd.TargetUserID, ltiCtx.ModeratorGroupName()); err != nil {
		return fmt.Errorf("failed to revoke moderator: %w", err)
	}

	s.logger.Infow("moderator revoked",
		"context_id", ltiCtx.ID(), "target_user_id", cmd.TargetUserID, "by_user_id", cmd.UserID)
	return nil
}

// List returns the user ids of the context's moderator group.
func (s *ModeratorService) List(ctx context.Context, cmd ManageModeratorCommand) ([]uint, error) {
	ltiCtx, err := s.authorize(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return s.enforcer.GroupMembers(ctx, ltiCtx.ModeratorGroupName())
}

func (s *ModeratorService) authorize(ctx context.Context, cmd ManageModeratorCommand) (*lticontext.LTIContext, error) {
	f, err := resolveForumInContext(ctx, s.forumRepo, cmd.ForumID, cmd.ContextID)
	if err != nil {
		return nil, err
	}
	if err := requirePermission(ctx, s.enforcer, cmd.UserID, f.ID(), permission.CanManageModerator); err != nil {
		return nil, err
	}
	return requireContext(ctx, s.contextRepo, cmd.ContextID)
}
