package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// NotificationService creates in-app notifications. Fan-out methods are
// best-effort: a failure for one user is logged and the rest still go out.
type NotificationService struct {
	repo   models.NotificationRepo
	logger *slog.Logger
	now    func() time.Time
}

func NewNotificationService(repo models.NotificationRepo, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func eventRef(event *models.Event) *primitive.ObjectID {
	id := event.ID
	return &id
}

// NotifyTicketConfirmation records the purchase confirmation for the buyer.
func (ns *NotificationService) NotifyTicketConfirmation(ctx context.Context, res *models.PurchaseResult) error {
	reg := res.Registration
	n := &models.Notification{
		UserID:         reg.UserID,
		Type:           models.NotificationTicketConfirmation,
		Title:          "Ticket purchase confirmed",
		Message:        fmt.Sprintf("You have %d x %s ticket(s) for %s.", reg.Quantity, reg.TicketTypeName, res.Event.Title),
		RelatedEventID: eventRef(res.Event),
		Data: map[string]any{
			"registrationId": reg.ID.Hex(),
			"paymentId":      res.Payment.ID.Hex(),
			"transactionId":  res.Payment.TransactionID,
			"ticketTypeName": reg.TicketTypeName,
			"quantity":       reg.Quantity,
			"totalAmount":    reg.TotalAmount,
		},
	}
	n.BeforeCreate(ns.now().UTC())
	return ns.repo.CreateNotification(ctx, n)
}

// NotifyReminder sends one reminder per user for the given window, skipping
// users who already received it. It returns how many were newly inserted.
func (ns *NotificationService) NotifyReminder(ctx context.Context, userIDs []uuid.UUID, event *models.Event, window models.ReminderWindow, startsAt time.Time) (int, error) {
	sent := 0
	var errs []error
	now := ns.now().UTC()

	for _, userID := range userIDs {
		n := &models.Notification{
			UserID:         userID,
			Type:           models.NotificationEventReminder,
			Title:          "Upcoming event: " + event.Title,
			Message:        fmt.Sprintf("%s starts %s, on %s at %s.", event.Title, window.Label, startsAt.Format("Mon, 02 Jan 2006"), event.StartTime),
			RelatedEventID: eventRef(event),
			Data: map[string]any{
				models.ReminderDataKey: window.Tag,
				"startsAt":             startsAt.UTC().Format(time.RFC3339),
				"location":             event.Location,
				"isOnline":             event.IsOnline,
			},
		}
		n.BeforeCreate(now)

		inserted, err := ns.repo.InsertReminderIfAbsent(ctx, n)
		if err != nil {
			ns.logger.Error("reminder notification failed",
				"user_id", userID,
				"event_id", event.ID.Hex(),
				"window", window.Tag,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		if inserted {
			sent++
		}
	}
	return sent, errors.Join(errs...)
}

// NotifyEventUpdate bulk-inserts an event_update notice for every user.
func (ns *NotificationService) NotifyEventUpdate(ctx context.Context, userIDs []uuid.UUID, event *models.Event, title, message string, data map[string]any) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	now := ns.now().UTC()
	batch := make([]*models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		n := &models.Notification{
			UserID:         userID,
			Type:           models.NotificationEventUpdate,
			Title:          title,
			Message:        message,
			RelatedEventID: eventRef(event),
			Data:           data,
		}
		n.BeforeCreate(now)
		batch = append(batch, n)
	}
	if err := ns.repo.CreateNotifications(ctx, batch); err != nil {
		ns.logger.Error("event update fan-out failed",
			"event_id", event.ID.Hex(),
			"recipients", len(batch),
			"error", err,
		)
		return 0, err
	}
	return len(batch), nil
}

// NormalizePage clamps page and limit and returns the matching offset.
func NormalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}

func (ns *NotificationService) List(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) (*models.NotificationPage, error) {
	_, limit, offset := NormalizePage(page, limit)
	return ns.repo.ListNotifications(ctx, userID, models.NotificationQuery{
		UnreadOnly: unreadOnly,
		Offset:     offset,
		Limit:      limit,
	})
}

func (ns *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return ns.repo.CountUnread(ctx, userID)
}

func (ns *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, id primitive.ObjectID) error {
	return ns.repo.MarkRead(ctx, userID, id)
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return ns.repo.MarkAllRead(ctx, userID)
}

func (ns *NotificationService) Delete(ctx context.Context, userID uuid.UUID, id primitive.ObjectID) error {
	return ns.repo.DeleteNotification(ctx, userID, id)
}

func (ns *NotificationService) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return ns.repo.DeleteRead(ctx, userID)
}
