// Package permission holds the use cases that keep context groups, their
// members and their per-forum grants in line with the declared role
// permission table.
package permission

import (
	"context"
	"fmt"

	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

// GroupSyncService reconciles a user's context group memberships and
// materializes default grants for new forums.
type GroupSyncService struct {
	enforcer  permission.Enforcer
	rolePerms permission.RolePermissions
	logger    logger.Interface
}

func NewGroupSyncService(enforcer permission.Enforcer, rolePerms permission.RolePermissions, log logger.Interface) *GroupSyncService {
	return &GroupSyncService{
		enforcer:  enforcer,
		rolePerms: rolePerms,
		logger:    log,
	}
}

// SyncUserGroups aligns the user's membership in the context's groups with
// the roles the launch declared: stale role groups are left, missing ones
// joined. Internal-only groups (moderator) survive untouched, and groups
// of other contexts are never considered.
func (s *GroupSyncService) SyncUserGroups(ctx context.Context, userID uint, ltiCtx *lticontext.LTIContext, roles []string) error {
	current, err := s.enforcer.UserGroups(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user groups: %w", err)
	}

	target := map[string]bool{ltiCtx.BaseGroupName(): true}
	for _, role := range roles {
		target[ltiCtx.RoleGroupName(role)] = true
	}

	for _, group := range current {
		if !ltiCtx.OwnsGroup(group) || ltiCtx.IsInternalGroup(group) {
			continue
		}
		if target[group] {
			delete(target, group)
			continue
		}
		if err := s.enforcer.RemoveUserFromGroup(ctx, userID, group); err != nil {
			return fmt.Errorf("failed to leave group %s: %w", group, err)
		}
		s.logger.Debugw("removed user from group", "user_id", userID, "group", group)
	}

	for group := range target {
		if err := s.enforcer.AddUserToGroup(ctx, userID, group); err != nil {
			return fmt.Errorf("failed to join group %s: %w", group, err)
		}
		s.logger.Debugw("added user to group", "user_id", userID, "group", group)
	}

	return nil
}

// InitForumPermissions materializes the default grants on a freshly
// provisioned forum: the base set for the base group and the declared
// set for every configured role group, whatever roles the provisioning
// launch happened to carry. An instructor arriving after a student
// created the forum must find their group already granted. In a locked
// context the base group starts without the write half of its set.
func (s *GroupSyncService) InitForumPermissions(ctx context.Context, forumID uint, ltiCtx *lticontext.LTIContext) error {
	basePerms := permission.BasePermissions()
	if ltiCtx.IsMarkedLocked() {
		basePerms = permission.BaseReadPermissions()
	}
	if err := s.grantAll(ctx, ltiCtx.BaseGroupName(), forumID, basePerms); err != nil {
		return err
	}

	for role := range s.rolePerms {
		if err := s.grantAll(ctx, ltiCtx.RoleGroupName(role), forumID, s.rolePerms.ForRole(role)); err != nil {
			return err
		}
	}

	return nil
}

// ReconcileLockState makes the stored lock flag authoritative for the
// base group of the given forums. It repairs side-channel flips of the
// flag the lock controller never saw.
func (s *GroupSyncService) ReconcileLockState(ctx context.Context, ltiCtx *lticontext.LTIContext, forumIDs []uint) error {
	baseGroup := ltiCtx.BaseGroupName()

	for _, forumID := range forumIDs {
		held, err := s.enforcer.GroupPermissions(ctx, baseGroup, forumID)
		if err != nil {
			return fmt.Errorf("failed to read base group permissions: %w", err)
		}

		if ltiCtx.IsMarkedLocked() {
			for _, codename := range permission.BaseWritePermissions() {
				if !permission.Contains(held, codename) {
					continue
				}
				if err := s.enforcer.Revoke(ctx, baseGroup, forumID, codename); err != nil {
					return fmt.Errorf("failed to strip %s: %w", codename, err)
				}
				s.logger.Infow("stripped write permission from locked context",
					"context_id", ltiCtx.ID(), "forum_id", forumID, "codename", codename)
			}
			continue
		}

		for _, codename := range permission.BasePermissions() {
			if permission.Contains(held, codename) {
				continue
			}
			if err := s.enforcer.Grant(ctx, baseGroup, forumID, codename); err != nil {
				return fmt.Errorf("failed to restore %s: %w", codename, err)
			}
			s.logger.Infow("restored base permission on unlocked context",
				"context_id", ltiCtx.ID(), "forum_id", forumID, "codename", codename)
		}
	}

	return nil
}

func (s *GroupSyncService) grantAll(ctx context.Context, group string, forumID uint, perms []permission.Codename) error {
	for _, codename := range perms {
		if err := s.enforcer.Grant(ctx, group, forumID, codename); err != nil {
			return fmt.Errorf("failed to grant %s to %s: %w", codename, group, err)
		}
	}
	return nil
}
