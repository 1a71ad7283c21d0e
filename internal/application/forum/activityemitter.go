package forum

import (
	"context"

	"github.com/openfun/ashley-sub000/internal/domain/activity"
	"github.com/openfun/ashley-sub000/internal/domain/lti"
	"github.com/openfun/ashley-sub000/internal/domain/shared/events"
	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

// activityEmitter publishes activity events best effort: an event that
// cannot be built or queued is logged and forgotten, never surfaced.
type activityEmitter struct {
	userRepo     user.Repository
	consumerRepo lti.ConsumerRepository
	publisher    events.EventPublisher
	logger       logger.Interface
}

func newActivityEmitter(userRepo user.Repository, consumerRepo lti.ConsumerRepository, publisher events.EventPublisher, log logger.Interface) *activityEmitter {
	return &activityEmitter{
		userRepo:     userRepo,
		consumerRepo: consumerRepo,
		publisher:    publisher,
		logger:       log,
	}
}

func (e *activityEmitter) actor(ctx context.Context, userID uint) (activity.Actor, bool) {
	u, err := e.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil {
		e.logger.Warnw("unable to resolve activity actor", "error", err, "user_id", userID)
		return activity.Actor{}, false
	}

	consumer, err := e.consumerRepo.GetBySlug(ctx, u.ConsumerSlug())
	if err != nil || consumer == nil {
		e.logger.Warnw("unable to resolve actor consumer", "error", err, "user_id", userID)
		return activity.Actor{}, false
	}

	return activity.Actor{
		UserID:       u.ID(),
		RemoteUserID: u.RemoteUserID(),
		ConsumerSlug: consumer.Slug(),
		ConsumerURL:  consumer.URL(),
	}, true
}

func (e *activityEmitter) emit(event activity.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(event); err != nil {
		e.logger.Debugw("activity event dropped", "error", err, "event_type", event.GetEventType())
	}
}
