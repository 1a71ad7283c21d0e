package forum

import (
	"context"
	"fmt"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

type ListReadableForumsQuery struct {
	UserID      uint
	IsSuperuser bool
	ContextID   uint
}

// ListReadableForumsUseCase lists the forums a session may read: only
// forums of the bound context, never archived ones, and only those the
// user holds can_read_forum on. Superusers skip the per-user permission
// check but still obey the context and archive filters.
type ListReadableForumsUseCase struct {
	forumRepo forum.Repository
	enforcer  permission.Enforcer
	logger    logger.Interface
}

func NewListReadableForumsUseCase(forumRepo forum.Repository, enforcer permission.Enforcer, log logger.Interface) *ListReadableForumsUseCase {
	return &ListReadableForumsUseCase{
		forumRepo: forumRepo,
		enforcer:  enforcer,
		logger:    log,
	}
}

func (uc *ListReadableForumsUseCase) Execute(ctx context.Context, query ListReadableForumsQuery) ([]*forum.Forum, error) {
	forums, err := uc.forumRepo.ListByContext(ctx, query.ContextID)
	if err != nil {
		return nil, fmt.Errorf("failed to list context forums: %w", err)
	}

	readable := make([]*forum.Forum, 0, len(forums))
	for _, f := range forums {
		if f.IsArchived() {
			continue
		}
		if !query.IsSuperuser {
			allowed, err := uc.enforcer.HasPermission(ctx, query.UserID, f.ID(), permission.CanReadForum)
			if err != nil {
				return nil, err
			}
			if !allowed {
				continue
			}
		}
		readable = append(readable, f)
	}

	return readable, nil
}
