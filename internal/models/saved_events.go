package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SavedEventItem struct {
	EventID primitive.ObjectID `bson:"eventId" json:"eventId"`
	AddedAt time.Time          `bson:"addedAt" json:"addedAt"`
}

// SavedEvents is a user's interest list, one document per user with items
// keyed by event id hex.
type SavedEvents struct {
	ID        primitive.ObjectID        `bson:"_id,omitempty" json:"id"`
	UserID    uuid.UUID                 `bson:"userId" json:"userId" validate:"required"`
	Items     map[string]SavedEventItem `bson:"items" json:"items"`
	CreatedAt time.Time                 `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time                 `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// EventIDs returns the saved event ids in no particular order.
func (s *SavedEvents) EventIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(s.Items))
	for _, item := range s.Items {
		ids = append(ids, item.EventID)
	}
	return ids
}

type SavedEventRepo interface {
	SaveEvent(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) (*SavedEvents, error)
	UnsaveEvent(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) error
	GetSavedEvents(ctx context.Context, userId uuid.UUID) (*SavedEvents, error)
	UsersWhoSaved(ctx context.Context, eventId primitive.ObjectID) ([]uuid.UUID, error)
}

func savedItemKey(eventId primitive.ObjectID) string {
	return "items." + eventId.Hex()
}

func (mdb *MongodbRepo) SaveEvent(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) (*SavedEvents, error) {
	col, err := mdb.GetCollection(ctx, SavedEventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now().UTC()
	filter := bson.M{"userId": userId}

	update := bson.M{
		"$set": bson.M{
			"updatedAt":           now,
			savedItemKey(eventId): SavedEventItem{EventID: eventId, AddedAt: now},
		},
		"$setOnInsert": bson.M{
			"userId":    userId,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result SavedEvents
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting saved event: %w", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) UnsaveEvent(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, SavedEventsCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{
		"$unset": bson.M{savedItemKey(eventId): ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := col.UpdateOne(ctx, bson.M{"userId": userId, savedItemKey(eventId): bson.M{"$exists": true}}, update)
	if err != nil {
		return fmt.Errorf("error removing saved event: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSavedEvents returns an empty list for users who never saved anything.
func (mdb *MongodbRepo) GetSavedEvents(ctx context.Context, userId uuid.UUID) (*SavedEvents, error) {
	col, err := mdb.GetCollection(ctx, SavedEventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var saved SavedEvents
	err = col.FindOne(ctx, bson.M{"userId": userId}).Decode(&saved)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &SavedEvents{UserID: userId, Items: map[string]SavedEventItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding saved events: %w", err)
	}
	if saved.Items == nil {
		saved.Items = map[string]SavedEventItem{}
	}
	return &saved, nil
}

func (mdb *MongodbRepo) UsersWhoSaved(ctx context.Context, eventId primitive.ObjectID) ([]uuid.UUID, error) {
	col, err := mdb.GetCollection(ctx, SavedEventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{savedItemKey(eventId): bson.M{"$exists": true}}
	opts := options.Find().SetProjection(bson.M{"userId": 1})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding savers: %w", err)
	}
	defer cursor.Close(ctx)

	var users []uuid.UUID
	for cursor.Next(ctx) {
		var doc struct {
			UserID uuid.UUID `bson:"userId"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding saver: %w", err)
		}
		users = append(users, doc.UserID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return users, nil
}
