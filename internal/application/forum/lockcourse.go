package forum

import (
	"context"
	"fmt"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

type LockCourseCommand struct {
	// ForumID is the forum the lock was requested from; it must belong
	// to the session context, and the transition then covers every forum
	// of that context.
	ForumID   uint
	UserID    uint
	ContextID uint
}

type LockCourseUseCase struct {
	forumRepo   forum.Repository
	contextRepo lticontext.Repository
	enforcer    permission.Enforcer
	lockStore   permission.LockStore
	logger      logger.Interface
}

func NewLockCourseUseCase(
	forumRepo forum.Repository,
	contextRepo lticontext.Repository,
	enforcer permission.Enforcer,
	lockStore permission.LockStore,
	log logger.Interface,
) *LockCourseUseCase {
	return &LockCourseUseCase{
		forumRepo:   forumRepo,
		contextRepo: contextRepo,
		enforcer:    enforcer,
		lockStore:   lockStore,
		logger:      log,
	}
}

func (uc *LockCourseUseCase) Execute(ctx context.Context, cmd LockCourseCommand) error {
	f, err := resolveForumInContext(ctx, uc.forumRepo, cmd.ForumID, cmd.ContextID)
	if err != nil {
		return err
	}
	if err := requirePermission(ctx, uc.enforcer, cmd.UserID, f.ID(), permission.CanLockCourse); err != nil {
		return err
	}
	ltiCtx, err := requireContext(ctx, uc.contextRepo, cmd.ContextID)
	if err != nil {
		return err
	}

	forumIDs, err := contextForumIDs(ctx, uc.forumRepo, cmd.ContextID)
	if err != nil {
		return err
	}

	if err := uc.lockStore.LockContext(ctx, ltiCtx.ID(), ltiCtx.BaseGroupName(), forumIDs); err != nil {
		return err
	}
	if err := uc.enforcer.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload enforcer: %w", err)
	}

	uc.logger.Infow("course locked", "context_id", ltiCtx.ID(), "user_id", cmd.UserID, "forums", len(forumIDs))
	return nil
}

type UnlockCourseCommand struct {
	ForumID   uint
	UserID    uint
	ContextID uint
}

type UnlockCourseUseCase struct {
	forumRepo   forum.Repository
	contextRepo lticontext.Repository
	enforcer    permission.Enforcer
	lockStore   permission.LockStore
	logger      logger.Interface
}

func NewUnlockCourseUseCase(
	forumRepo forum.Repository,
	contextRepo lticontext.Repository,
	enforcer permission.Enforcer,
	lockStore permission.LockStore,
	log logger.Interface,
) *UnlockCourseUseCase {
	return &UnlockCourseUseCase{
		forumRepo:   forumRepo,
		contextRepo: contextRepo,
		enforcer:    enforcer,
		lockStore:   lockStore,
		logger:      log,
	}
}

func (uc *UnlockCourseUseCase) Execute(ctx context.Context, cmd UnlockCourseCommand) error {
	f, err := resolveForumInContext(ctx, uc.forumRepo, cmd.ForumID, cmd.ContextID)
	if err != nil {
		return err
	}
	if err := requirePermission(ctx, uc.enforcer, cmd.UserID, f.ID(), permission.CanUnlockCourse); err != nil {
		return err
	}
	ltiCtx, err := requireContext(ctx, uc.contextRepo, cmd.ContextID)
	if err != nil {
		return err
	}

	forumIDs, err := contextForumIDs(ctx, uc.forumRepo, cmd.ContextID)
	if err != nil {
		return err
	}

	if err := uc.lockStore.UnlockContext(ctx, ltiCtx.ID(), ltiCtx.BaseGroupName(), forumIDs); err != nil {
		return err
	}
	if err := uc.enforcer.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload enforcer: %w", err)
	}

	uc.logger.Infow("course unlocked", "context_id", ltiCtx.ID(), "user_id", cmd.UserID, "forums", len(forumIDs))
	return nil
}

func contextForumIDs(ctx context.Context, repo forum.Repository, contextID uint) ([]uint, error) {
	forums, err := repo.ListByContext(ctx, contextID)
	if err != nil {
		return nil, fmt.Errorf("failed to list context forums: %w", err)
	}
	ids := make([]uint, 0, len(forums))
	for _, f := range forums {
		ids = append(ids, f.ID())
	}
	return ids, nil
}
