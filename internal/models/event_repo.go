package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	GetEventsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, offset, limit int) ([]*Event, int64, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, set map[string]any) (*Event, error)
	TransitionEventStatus(ctx context.Context, id primitive.ObjectID, from []EventStatus, to EventStatus) (*Event, error)
	// EventsOnDays returns published events whose date lies in [from, to).
	// Callers narrow the result on the exact start timestamp.
	EventsOnDays(ctx context.Context, from, to time.Time) ([]*Event, error)
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return event, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var event Event
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) GetEventsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Event, error) {
	if len(ids) == 0 {
		return []*Event{}, nil
	}
	col, err := mdb.GetCollection(ctx, EventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func eventListFilter(f EventFilter) bson.M {
	filter := bson.M{"status": EventStatusPublished}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	if f.Upcoming {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		y, m, d := now.UTC().Date()
		filter["date"] = bson.M{"$gte": time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
	}
	return filter
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context, f EventFilter, offset, limit int) ([]*Event, int64, error) {
	col, err := mdb.GetCollection(ctx, EventsCollection)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %w", err)
	}

	filter := eventListFilter(f)
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*Event, 0, limit)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, total, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id primitive.ObjectID, set map[string]any) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	doc := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range set {
		doc[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": doc}, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &event, nil
}

// TransitionEventStatus moves an event to status to only if its current
// status is one of from. A missing event yields ErrEventNotFound, a status
// mismatch yields ErrInvalidState.
func (mdb *MongodbRepo) TransitionEventStatus(ctx context.Context, id primitive.ObjectID, from []EventStatus, to EventStatus) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{"_id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := mdb.GetEventByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) EventsOnDays(ctx context.Context, from, to time.Time) ([]*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{
		"status": EventStatusPublished,
		"date":   bson.M{"$gte": from, "$lt": to},
	}
	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find events by date: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}
