package lticontext

import "context"

// Repository persists LTI contexts. Create must surface unique-constraint
// conflicts on (consumer, lti id) so callers can retry as lookup.
type Repository interface {
	Create(ctx context.Context, ltiContext *LTIContext) error
	GetByID(ctx context.Context, id uint) (*LTIContext, error)
	GetByConsumerAndLTIID(ctx context.Context, consumerSlug, ltiID string) (*LTIContext, error)
	// SetLockFlag persists the lock flag alone. The permission rewrite
	// around it runs in the same transaction at the application layer.
	SetLockFlag(ctx context.Context, id uint, locked bool) error
}
