package user

import "context"

// Repository persists users. Create must surface unique-constraint
// conflicts on (consumer, remote user id) so callers can retry as lookup.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByConsumerAndRemoteID(ctx context.Context, consumerSlug, remoteUserID string) (*User, error)
	Update(ctx context.Context, user *User) error
}
