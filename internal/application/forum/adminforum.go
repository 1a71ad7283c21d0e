package forum

import (
	"context"
	"fmt"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

type RenameForumCommand struct {
	ForumID   uint
	UserID    uint
	ContextID uint
	Name      string
}

type RenameForumUseCase struct {
	forumRepo forum.Repository
	enforcer  permission.Enforcer
	logger    logger.Interface
}

func NewRenameForumUseCase(forumRepo forum.Repository, enforcer permission.Enforcer, log logger.Interface) *RenameForumUseCase {
	return &RenameForumUseCase{forumRepo: forumRepo, enforcer: enforcer, logger: log}
}

func (uc *RenameForumUseCase) Execute(ctx context.Context, cmd RenameForumCommand) (*forum.Forum, error) {
	f, err := resolveForumInContext(ctx, uc.forumRepo, cmd.ForumID, cmd.ContextID)
	if err != nil {
		return nil, err
	}
	if err := requirePermission(ctx, uc.enforcer, cmd.UserID, f.ID(), permission.CanRenameForum); err != nil {
		return nil, err
	}

	name := utils.SanitizeText(cmd.Name)
	if name == "" {
		return nil, errors.NewValidationError("forum name cannot be empty")
	}
	if err := f.Rename(name); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.forumRepo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to rename forum: %w", err)
	}

	uc.logger.Infow("forum renamed", "forum_id", f.ID(), "user_id", cmd.UserID)
	return f, nil
}

type ArchiveForumCommand struct {
	ForumID   uint
	UserID    uint
	ContextID uint
}

type ArchiveForumUseCase struct {
	forumRepo forum.Repository
	enforcer  permission.Enforcer
	logger    logger.Interface
}

func NewArchiveForumUseCase(forumRepo forum.Repository, enforcer permission.Enforcer, log logger.Interface) *ArchiveForumUseCase {
	return &ArchiveForumUseCase{forumRepo: forumRepo, enforcer: enforcer, logger: log}
}

// Execute archives the forum, taking it out of every listing. There is no
// way back, so the gate sits on its own codename.
func (uc *ArchiveForumUseCase) Execute(ctx context.Context, cmd ArchiveForumCommand) error {
	f, err := resolveForumInContext(ctx, uc.forumRepo, cmd.ForumID, cmd.ContextID)
	if err != nil {
		return err
	}
	if err := requirePermission(ctx, uc.enforcer, cmd.UserID, f.ID(), permission.CanArchiveForum); err != nil {
		return err
	}

	f.Archive()
	if err := uc.forumRepo.Update(ctx, f); err != nil {
		return fmt.Errorf("failed to archive forum: %w", err)
	}

	uc.logger.Infow("forum archived", "forum_id", f.ID(), "user_id", cmd.UserID)
	return nil
}
