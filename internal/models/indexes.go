package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IndexRepo interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the indexes the queries and the reminder
// de-duplication rely on. It is safe to call on every start.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		EventsCollection: {
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetName("status_date_idx"),
			},
			{
				Keys:    bson.D{{Key: "category", Value: 1}},
				Options: options.Index().SetName("category_idx"),
			},
		},
		TicketsCollection: {
			// free-ticket holding check and holder lookups
			{
				Keys: bson.D{
					{Key: "userId", Value: 1},
					{Key: "eventId", Value: 1},
					{Key: "ticketTypeId", Value: 1},
					{Key: "status", Value: 1},
				},
				Options: options.Index().SetName("user_event_type_status_idx"),
			},
			{
				Keys:    bson.D{{Key: "eventId", Value: 1}},
				Options: options.Index().SetName("event_id_idx"),
			},
			{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("code_unique"),
			},
		},
		RegistrationsCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("user_created_idx"),
			},
		},
		NotificationsCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("user_created_idx"),
			},
			// one reminder per (user, event, window)
			{
				Keys: bson.D{
					{Key: "userId", Value: 1},
					{Key: "relatedEventId", Value: 1},
					{Key: reminderTagPath, Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"type": NotificationEventReminder}).
					SetName("reminder_unique"),
			},
		},
		SavedEventsCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("user_unique"),
			},
		},
	}

	for colName, indexes := range specs {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return fmt.Errorf("error getting collection: %w", err)
		}
		if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", colName, err)
		}
	}
	return nil
}
