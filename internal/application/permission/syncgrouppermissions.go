package permission

import (
	"context"
	"fmt"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

type SyncGroupPermissionsCommand struct {
	// Apply persists the changes; without it the run only reports.
	Apply bool
	// RemoveExtra also revokes grants outside the declared sets. Locked
	// contexts are skipped: their reduced base set is intentional.
	RemoveExtra bool
}

type SyncGroupPermissionsResult struct {
	ForumsVisited int
	Granted       int
	Revoked       int
}

// SyncGroupPermissionsUseCase is the maintenance command that walks every
// forum and restores the declared permission sets on its context groups.
type SyncGroupPermissionsUseCase struct {
	forumRepo   forum.Repository
	contextRepo lticontext.Repository
	enforcer    permission.Enforcer
	rolePerms   permission.RolePermissions
	logger      logger.Interface
}

func NewSyncGroupPermissionsUseCase(
	forumRepo forum.Repository,
	contextRepo lticontext.Repository,
	enforcer permission.Enforcer,
	rolePerms permission.RolePermissions,
	log logger.Interface,
) *SyncGroupPermissionsUseCase {
	return &SyncGroupPermissionsUseCase{
		forumRepo:   forumRepo,
		contextRepo: contextRepo,
		enforcer:    enforcer,
		rolePerms:   rolePerms,
		logger:      log,
	}
}

func (uc *SyncGroupPermissionsUseCase) Execute(ctx context.Context, cmd SyncGroupPermissionsCommand) (*SyncGroupPermissionsResult, error) {
	forums, err := uc.forumRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forums: %w", err)
	}

	result := &SyncGroupPermissionsResult{}

	for _, f := range forums {
		contextIDs, err := uc.forumRepo.ContextIDs(ctx, f.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to list contexts of forum %d: %w", f.ID(), err)
		}

		for _, contextID := range contextIDs {
			ltiCtx, err := uc.contextRepo.GetByID(ctx, contextID)
			if err != nil {
				return nil, fmt.Errorf("failed to get context %d: %w", contextID, err)
			}
			if ltiCtx == nil {
				continue
			}

			if err := uc.syncForumContext(ctx, cmd, f, ltiCtx, result); err != nil {
				return nil, err
			}
		}

		result.ForumsVisited++
	}

	uc.logger.Infow("group permission sync finished",
		"applied", cmd.Apply,
		"forums", result.ForumsVisited,
		"granted", result.Granted,
		"revoked", result.Revoked)

	return result, nil
}

func (uc *SyncGroupPermissionsUseCase) syncForumContext(
	ctx context.Context,
	cmd SyncGroupPermissionsCommand,
	f *forum.Forum,
	ltiCtx *lticontext.LTIContext,
	result *SyncGroupPermissionsResult,
) error {
	declared := map[string][]permission.Codename{
		ltiCtx.BaseGroupName(): permission.BasePermissions(),
	}
	// A locked context keeps its base group read-only; sync must not
	// hand the write half back.
	if ltiCtx.IsMarkedLocked() {
		declared[ltiCtx.BaseGroupName()] = permission.BaseReadPermissions()
	}
	for role := range uc.rolePerms {
		declared[ltiCtx.RoleGroupName(role)] = uc.rolePerms.ForRole(role)
	}

	for group, expected := range declared {
		held, err := uc.enforcer.GroupPermissions(ctx, group, f.ID())
		if err != nil {
			return fmt.Errorf("failed to read permissions of %s: %w", group, err)
		}

		for _, codename := range expected {
			if permission.Contains(held, codename) {
				continue
			}
			result.Granted++
			uc.logger.Infow("missing grant",
				"group", group, "forum_id", f.ID(), "codename", codename, "applied", cmd.Apply)
			if !cmd.Apply {
				continue
			}
			if err := uc.enforcer.Grant(ctx, group, f.ID(), codename); err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", codename, group, err)
			}
		}

		if !cmd.RemoveExtra || ltiCtx.IsMarkedLocked() {
			continue
		}
		for _, codename := range held {
			if permission.Contains(expected, codename) {
				continue
			}
			result.Revoked++
			uc.logger.Infow("extra grant",
				"group", group, "forum_id", f.ID(), "codename", codename, "applied", cmd.Apply)
			if !cmd.Apply {
				continue
			}
			if err := uc.enforcer.Revoke(ctx, group, f.ID(), codename); err != nil {
				return fmt.Errorf("failed to revoke %s from %s: %w", codename, group, err)
			}
		}
	}

	return nil
}
