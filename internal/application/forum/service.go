// Package forum implements the post-launch forum operations: context
// scoped listing, the admin lifecycle (rename, archive, lock, unlock,
// moderators) and the minimal conversation surface the permission gates
// act on.
package forum

import (
	"context"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
)

// resolveForumInContext loads a forum and verifies it belongs to the
// session's context. Forums of other contexts are treated as forbidden,
// not absent, so the response does not say whether they exist.
func resolveForumInContext(ctx context.Context, repo forum.Repository, forumID, contextID uint) (*forum.Forum, error) {
	f, err := repo.GetByID(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.NewNotFoundError("forum not found")
	}

	contextIDs, err := repo.ContextIDs(ctx, f.ID())
	if err != nil {
		return nil, err
	}
	for _, id := range contextIDs {
		if id == contextID {
			return f, nil
		}
	}

	return nil, errors.NewForbiddenError("permission denied")
}

func requirePermission(ctx context.Context, enforcer permission.Enforcer, userID, forumID uint, codename permission.Codename) error {
	allowed, err := enforcer.HasPermission(ctx, userID, forumID, codename)
	if err != nil {
		return err
	}
	if !allowed {
		return errors.NewForbiddenError("permission denied")
	}
	return nil
}

func requireContext(ctx context.Context, repo lticontext.Repository, contextID uint) (*lticontext.LTIContext, error) {
	ltiCtx, err := repo.GetByID(ctx, contextID)
	if err != nil {
		return nil, err
	}
	if ltiCtx == nil {
		return nil, errors.NewForbiddenError("permission denied")
	}
	return ltiCtx, nil
}
