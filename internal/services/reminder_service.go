package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
)

// ReminderService finds events starting inside a look-ahead window and
// reminds the users who saved them.
type ReminderService struct {
	events   models.EventRepo
	saved    models.SavedEventRepo
	notifier *NotificationService
	loc      *time.Location
	logger   *slog.Logger
}

func NewReminderService(events models.EventRepo, saved models.SavedEventRepo, notifier *NotificationService, loc *time.Location, logger *slog.Logger) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		events:   events,
		saved:    saved,
		notifier: notifier,
		loc:      loc,
		logger:   logger,
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayBounds widens [from, to) to whole UTC days with a day of slack on
// either side, so a start time in any zone offset is still caught by the
// date range query.
func dayBounds(from, to time.Time) (time.Time, time.Time) {
	return truncateDay(from).Add(-24 * time.Hour), truncateDay(to).Add(48 * time.Hour)
}

// SweepWindow sends reminders for one window and returns how many were
// newly created. Per-event failures are logged and joined into the error;
// the remaining events are still processed.
func (rs *ReminderService) SweepWindow(ctx context.Context, now time.Time, window models.ReminderWindow) (int, error) {
	from, to := window.Bounds(now)
	lo, hi := dayBounds(from, to)

	candidates, err := rs.events.EventsOnDays(ctx, lo, hi)
	if err != nil {
		return 0, fmt.Errorf("window %s: %w", window.Tag, err)
	}

	sent := 0
	var errs []error
	for _, event := range candidates {
		startsAt, err := event.StartsAt(rs.loc)
		if err != nil {
			rs.logger.Warn("skipping event with bad start time",
				"event_id", event.ID.Hex(),
				"start_time", event.StartTime,
				"error", err,
			)
			continue
		}
		if startsAt.Before(from) || !startsAt.Before(to) {
			continue
		}

		users, err := rs.saved.UsersWhoSaved(ctx, event.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", event.ID.Hex(), err))
			continue
		}
		n, err := rs.notifier.NotifyReminder(ctx, users, event, window, startsAt)
		sent += n
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", event.ID.Hex(), err))
		}
	}
	return sent, errors.Join(errs...)
}
