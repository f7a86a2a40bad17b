package services

import (
	"context"
	"fmt"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedEventService manages the interest lists the reminder sweep reads.
type SavedEventService struct {
	saved  models.SavedEventRepo
	events models.EventRepo
}

func NewSavedEventService(saved models.SavedEventRepo, events models.EventRepo) *SavedEventService {
	return &SavedEventService{
		saved:  saved,
		events: events,
	}
}

func (ss *SavedEventService) SaveEvent(ctx context.Context, userID uuid.UUID, eventID primitive.ObjectID) (*models.SavedEvents, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid user ID", models.ErrValidation)
	}
	if _, err := ss.events.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	return ss.saved.SaveEvent(ctx, userID, eventID)
}

func (ss *SavedEventService) UnsaveEvent(ctx context.Context, userID uuid.UUID, eventID primitive.ObjectID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: invalid user ID", models.ErrValidation)
	}
	return ss.saved.UnsaveEvent(ctx, userID, eventID)
}

// SavedEvents returns the full event documents the user saved.
func (ss *SavedEventService) SavedEvents(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid user ID", models.ErrValidation)
	}
	list, err := ss.saved.GetSavedEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ss.events.GetEventsByIDs(ctx, list.EventIDs())
}
