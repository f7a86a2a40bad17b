package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *Notification) error
	CreateNotifications(ctx context.Context, ns []*Notification) error
	// InsertReminderIfAbsent inserts n unless a reminder with the same
	// (user, event, window tag) exists. It reports whether n was inserted.
	InsertReminderIfAbsent(ctx context.Context, n *Notification) (bool, error)
	ListNotifications(ctx context.Context, userId uuid.UUID, q NotificationQuery) (*NotificationPage, error)
	CountUnread(ctx context.Context, userId uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userId uuid.UUID, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userId uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, userId uuid.UUID, id primitive.ObjectID) error
	DeleteRead(ctx context.Context, userId uuid.UUID) (int64, error)
}

func (mdb *MongodbRepo) CreateNotification(ctx context.Context, n *Notification) error {
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// CreateNotifications inserts unordered so one bad document does not stop
// the rest.
func (mdb *MongodbRepo) CreateNotifications(ctx context.Context, ns []*Notification) error {
	if len(ns) == 0 {
		return nil
	}
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	docs := make([]interface{}, len(ns))
	for i, n := range ns {
		docs[i] = n
	}
	if _, err := col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert notifications: %w", err)
	}
	return nil
}

const reminderTagPath = "data." + ReminderDataKey

// reminderFilter is the key the unique partial reminder index enforces.
func reminderFilter(n *Notification) bson.M {
	return bson.M{
		"userId":         n.UserID,
		"relatedEventId": *n.RelatedEventID,
		"type":           NotificationEventReminder,
		reminderTagPath:  n.ReminderTag(),
	}
}

func (mdb *MongodbRepo) InsertReminderIfAbsent(ctx context.Context, n *Notification) (bool, error) {
	if n.RelatedEventID == nil {
		return false, fmt.Errorf("reminder without related event")
	}
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{"$setOnInsert": bson.M{
		"_id":            n.ID,
		"userId":         n.UserID,
		"type":           n.Type,
		"title":          n.Title,
		"message":        n.Message,
		"relatedEventId": n.RelatedEventID,
		"data":           n.Data,
		"isRead":         false,
		"createdAt":      n.CreatedAt,
		"updatedAt":      n.UpdatedAt,
	}}

	res, err := col.UpdateOne(ctx, reminderFilter(n), update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent sweep won the race on the unique index
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert reminder: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

func (mdb *MongodbRepo) ListNotifications(ctx context.Context, userId uuid.UUID, q NotificationQuery) (*NotificationPage, error) {
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{"userId": userId}
	if q.UnreadOnly {
		filter["isRead"] = false
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	unread, err := mdb.CountUnread(ctx, userId)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*Notification{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return &NotificationPage{Items: items, Total: total, UnreadCount: unread}, nil
}

func (mdb *MongodbRepo) CountUnread(ctx context.Context, userId uuid.UUID) (int64, error) {
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	n, err := col.CountDocuments(ctx, bson.M{"userId": userId, "isRead": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (mdb *MongodbRepo) MarkRead(ctx context.Context, userId uuid.UUID, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now().UTC()
	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userId},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) MarkAllRead(ctx context.Context, userId uuid.UUID) (int64, error) {
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now().UTC()
	res, err := col.UpdateMany(ctx,
		bson.M{"userId": userId, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now, "updatedAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (mdb *MongodbRepo) DeleteNotification(ctx context.Context, userId uuid.UUID, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id, "userId": userId})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) DeleteRead(ctx context.Context, userId uuid.UUID) (int64, error) {
	col, err := mdb.GetCollection(ctx, NotificationsCollection)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteMany(ctx, bson.M{"userId": userId, "isRead": true})
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}
	return res.DeletedCount, nil
}
