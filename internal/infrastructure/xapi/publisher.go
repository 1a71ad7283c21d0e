package xapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/openfun/ashley-sub000/internal/domain/activity"
	"github.com/openfun/ashley-sub000/internal/domain/shared/events"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

var _ events.EventHandler = (*Publisher)(nil)

// Publisher consumes activity events and writes one statement per event
// to the "xapi.{consumer slug}" channel. Events that cannot be attributed
// to an actor are dropped with a warning.
type Publisher struct {
	logger logger.Interface
}

func NewPublisher(log logger.Interface) *Publisher {
	return &Publisher{logger: log}
}

// Register subscribes the publisher to every activity event type.
func (p *Publisher) Register(dispatcher events.EventSubscriber) error {
	for _, eventType := range activity.EventTypes {
		if err := dispatcher.Subscribe(eventType, p); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
	}
	return nil
}

func (p *Publisher) CanHandle(eventType string) bool {
	for _, t := range activity.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

func (p *Publisher) Handle(event events.DomainEvent) error {
	e, ok := event.(activity.Event)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	statement, err := p.buildStatement(e)
	if err != nil {
		p.logger.Warnw("dropping activity statement", "error", err, "event_type", e.GetEventType(), "user_id", e.Actor.UserID)
		return err
	}

	payload, err := json.Marshal(statement)
	if err != nil {
		return fmt.Errorf("failed to marshal statement: %w", err)
	}

	p.logger.Named("xapi." + e.Actor.ConsumerSlug).Info(string(payload))
	return nil
}

func (p *Publisher) buildStatement(e activity.Event) (*Statement, error) {
	// Attribution needs both halves of the remote identity.
	if e.Actor.RemoteUserID == "" || e.Actor.ConsumerURL == "" {
		return nil, fmt.Errorf("no actor definition for user %d", e.Actor.UserID)
	}

	verb, err := verbFor(e.GetEventType())
	if err != nil {
		return nil, err
	}

	locale := e.Locale
	if locale == "" {
		locale = "en-US"
	}

	statement := &Statement{
		ID: uuid.NewString(),
		Actor: Agent{
			ObjectType: "Agent",
			Account: Account{
				HomePage: e.Actor.ConsumerURL,
				Name:     e.Actor.RemoteUserID,
			},
		},
		Verb: verb,
		Object: Activity{
			ID:         objectIRI(e.Object),
			ObjectType: "Activity",
			Definition: &ActivityDefinition{
				Name: LanguageMap{locale: e.Object.Name},
				Type: activityTypeFor(e.Object.Kind),
			},
		},
		Timestamp: e.GetOccurredAt().UTC().Format(time.RFC3339),
	}

	if parents := p.parentActivities(e, locale); len(parents) > 0 {
		statement.Context = &Context{
			ContextActivities: &ContextActivities{Parent: parents},
		}
	}

	// Paginated views report the page being read and the collection size,
	// so record stores can reconstruct reading progress.
	if e.Pagination != nil {
		statement.Object.Definition.Extensions = map[string]any{
			ExtensionTotalItems: e.Pagination.TotalItems,
			ExtensionTotalPages: e.Pagination.TotalPages,
		}
		if statement.Context == nil {
			statement.Context = &Context{}
		}
		statement.Context.Extensions = map[string]any{
			ExtensionPage: e.Pagination.Page,
		}
	}

	return statement, nil
}

// parentActivities nests the object under its container and the course.
func (p *Publisher) parentActivities(e activity.Event, locale string) []Activity {
	var parents []Activity

	if e.ForumLTIID != "" {
		parentType := ActivityTypeForum
		if e.Object.Kind == "post" {
			parentType = ActivityTypeTopic
		}
		parents = append(parents, Activity{
			ID:         "uuid://" + e.ForumLTIID,
			ObjectType: "Activity",
			Definition: &ActivityDefinition{
				Name: LanguageMap{locale: e.ParentName},
				Type: parentType,
			},
		})
	}

	if e.ContextLTIID != "" {
		parents = append(parents, Activity{
			ID:         e.ContextLTIID,
			ObjectType: "Activity",
			Definition: &ActivityDefinition{Type: ActivityTypeCourse},
		})
	}

	return parents
}

func verbFor(eventType string) (Verb, error) {
	switch eventType {
	case activity.EventForumViewed, activity.EventTopicViewed:
		return Verb{ID: VerbViewed, Display: LanguageMap{"en-US": "viewed"}}, nil
	case activity.EventTopicCreated, activity.EventPostCreated:
		return Verb{ID: VerbCreated, Display: LanguageMap{"en-US": "created"}}, nil
	case activity.EventTopicUpdated, activity.EventPostUpdated:
		return Verb{ID: VerbUpdated, Display: LanguageMap{"en-US": "updated"}}, nil
	default:
		return Verb{}, fmt.Errorf("no verb for event type %s", eventType)
	}
}

func objectIRI(object activity.Object) string {
	return "id://ashley/" + object.Kind + "/" + strconv.FormatUint(uint64(object.ID), 10)
}

func activityTypeFor(kind string) string {
	switch kind {
	case "topic":
		return ActivityTypeTopic
	case "post":
		return ActivityTypePost
	default:
		return ActivityTypeForum
	}
}
