package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of an organizer operation.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

func (a Actor) CanManage(event *models.Event) bool {
	return a.IsAdmin || event.OrganizerID == a.ID
}

type ImageUploader interface {
	UploadImages(ctx context.Context, sources []string, folder string) ([]string, error)
}

const EventImagesFolder = "events"

type EventService struct {
	events   models.EventRepo
	tickets  models.TicketRepo
	saved    models.SavedEventRepo
	notifier *NotificationService
	uploader ImageUploader
	logger   *slog.Logger
	now      func() time.Time
}

// NewEventService accepts a nil uploader; image sources are then stored
// as given.
func NewEventService(events models.EventRepo, tickets models.TicketRepo, saved models.SavedEventRepo, notifier *NotificationService, uploader ImageUploader, logger *slog.Logger) *EventService {
	return &EventService{
		events:   events,
		tickets:  tickets,
		saved:    saved,
		notifier: notifier,
		uploader: uploader,
		logger:   logger,
		now:      time.Now,
	}
}

func (es *EventService) CreateEvent(ctx context.Context, actor Actor, event *models.Event, publish bool) (*models.Event, error) {
	if actor.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: organizer is required", models.ErrValidation)
	}
	event.Title = strings.TrimSpace(event.Title)
	if err := models.Validate.Struct(event); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if len(event.TicketTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one ticket type is required", models.ErrValidation)
	}
	if event.IsOnline && event.OnlineURL == "" {
		return nil, fmt.Errorf("%w: online events need an onlineUrl", models.ErrValidation)
	}

	if es.uploader != nil && len(event.Images) > 0 {
		urls, err := es.uploader.UploadImages(ctx, event.Images, EventImagesFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload event images: %w", err)
		}
		event.Images = urls
	}

	event.OrganizerID = actor.ID
	event.Status = models.EventStatusDraft
	if publish {
		event.Status = models.EventStatusPublished
	}
	event.BeforeCreate(es.now().UTC())

	return es.events.CreateEvent(ctx, event)
}

func (es *EventService) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return es.events.GetEventByID(ctx, id)
}

func (es *EventService) ListEvents(ctx context.Context, filter models.EventFilter, page, limit int) ([]*models.Event, int64, error) {
	_, limit, offset := NormalizePage(page, limit)
	if filter.Now.IsZero() {
		filter.Now = es.now()
	}
	return es.events.ListEvents(ctx, filter, offset, limit)
}

func (es *EventService) managedEvent(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Event, error) {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(event) {
		return nil, models.ErrForbidden
	}
	return event, nil
}

// UpdateEvent changes display fields and tells ticket holders what changed.
func (es *EventService) UpdateEvent(ctx context.Context, actor Actor, id primitive.ObjectID, upd models.EventUpdate) (*models.Event, error) {
	if err := models.Validate.Struct(upd); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	set, changed := upd.Fields()
	if len(changed) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	current, err := es.managedEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.EventStatusCancelled || current.Status == models.EventStatusCompleted {
		return nil, models.ErrInvalidState
	}

	updated, err := es.events.UpdateEvent(ctx, id, set)
	if err != nil {
		return nil, err
	}

	holders, err := es.tickets.TicketHolders(ctx, id)
	if err != nil {
		es.logger.Error("could not load ticket holders for update notice", "event_id", id.Hex(), "error", err)
		return updated, nil
	}
	_, _ = es.notifier.NotifyEventUpdate(ctx, holders, updated,
		"Event updated: "+updated.Title,
		fmt.Sprintf("The organizer changed %s for %s.", strings.Join(changed, ", "), updated.Title),
		map[string]any{"changedFields": changed},
	)
	return updated, nil
}

func (es *EventService) PublishEvent(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Event, error) {
	if _, err := es.managedEvent(ctx, actor, id); err != nil {
		return nil, err
	}
	return es.events.TransitionEventStatus(ctx, id,
		[]models.EventStatus{models.EventStatusDraft}, models.EventStatusPublished)
}

// CancelEvent cancels the event and notifies ticket holders and everyone
// who saved it.
func (es *EventService) CancelEvent(ctx context.Context, actor Actor, id primitive.ObjectID, reason string) (*models.Event, error) {
	if _, err := es.managedEvent(ctx, actor, id); err != nil {
		return nil, err
	}
	cancelled, err := es.events.TransitionEventStatus(ctx, id,
		[]models.EventStatus{models.EventStatusDraft, models.EventStatusPublished}, models.EventStatusCancelled)
	if err != nil {
		return nil, err
	}

	recipients, err := es.affectedUsers(ctx, id)
	if err != nil {
		es.logger.Error("could not load recipients for cancellation notice", "event_id", id.Hex(), "error", err)
		return cancelled, nil
	}
	msg := cancelled.Title + " has been cancelled."
	if reason = strings.TrimSpace(reason); reason != "" {
		msg += " Reason: " + reason
	}
	_, _ = es.notifier.NotifyEventUpdate(ctx, recipients, cancelled,
		"Event cancelled: "+cancelled.Title, msg,
		map[string]any{"status": string(models.EventStatusCancelled)},
	)
	return cancelled, nil
}

func (es *EventService) affectedUsers(ctx context.Context, id primitive.ObjectID) ([]uuid.UUID, error) {
	holders, holdersErr := es.tickets.TicketHolders(ctx, id)
	savers, saversErr := es.saved.UsersWhoSaved(ctx, id)
	if holdersErr != nil && saversErr != nil {
		return nil, errors.Join(holdersErr, saversErr)
	}
	if err := errors.Join(holdersErr, saversErr); err != nil {
		es.logger.Warn("partial recipient list for event notice", "event_id", id.Hex(), "error", err)
	}
	return uniqueUsers(holders, savers), nil
}

func uniqueUsers(lists ...[]uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, list := range lists {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
