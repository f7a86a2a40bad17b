package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TicketRepo interface {
	GetTicketsByUser(ctx context.Context, userId uuid.UUID) ([]*TicketView, error)
	GetTicketByID(ctx context.Context, id primitive.ObjectID) (*Ticket, error)
	// FindFreeTicket returns the caller's non-cancelled free ticket for the
	// event, or ErrNotFound.
	FindFreeTicket(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) (*Ticket, error)
	TicketHolders(ctx context.Context, eventId primitive.ObjectID) ([]uuid.UUID, error)
	GetRegistrationsByUser(ctx context.Context, userId uuid.UUID) ([]*Registration, error)
}

func (mdb *MongodbRepo) GetTicketsByUser(ctx context.Context, userId uuid.UUID) ([]*TicketView, error) {
	col, err := mdb.GetCollection(ctx, TicketsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userId}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         EventsCollection,
			"localField":   "eventId",
			"foreignField": "_id",
			"as":           "event",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$event", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{
			"eventTitle":     "$event.title",
			"eventDate":      "$event.date",
			"eventStartTime": "$event.startTime",
			"eventLocation":  "$event.location",
			"eventIsOnline":  "$event.isOnline",
			"eventImage":     bson.M{"$arrayElemAt": bson.A{"$event.images", 0}},
			"eventStatus":    "$event.status",
		}}},
		{{Key: "$project", Value: bson.M{"event": 0}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tickets: %w", err)
	}
	defer cursor.Close(ctx)

	tickets := []*TicketView{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode tickets: %w", err)
	}
	return tickets, nil
}

func (mdb *MongodbRepo) GetTicketByID(ctx context.Context, id primitive.ObjectID) (*Ticket, error) {
	col, err := mdb.GetCollection(ctx, TicketsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var ticket Ticket
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

func (mdb *MongodbRepo) FindFreeTicket(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) (*Ticket, error) {
	col, err := mdb.GetCollection(ctx, TicketsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	filter := bson.M{
		"userId":  userId,
		"eventId": eventId,
		"price":   0,
		"status":  bson.M{"$ne": TicketCancelled},
	}
	var ticket Ticket
	err = col.FindOne(ctx, filter).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find free ticket: %w", err)
	}
	return &ticket, nil
}

func (mdb *MongodbRepo) TicketHolders(ctx context.Context, eventId primitive.ObjectID) ([]uuid.UUID, error) {
	col, err := mdb.GetCollection(ctx, TicketsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	raw, err := col.Distinct(ctx, "userId", bson.M{
		"eventId": eventId,
		"status":  bson.M{"$ne": TicketCancelled},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket holders: %w", err)
	}

	holders := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		bin, ok := v.(primitive.Binary)
		if !ok {
			continue
		}
		id, err := uuid.FromBytes(bin.Data)
		if err != nil {
			continue
		}
		holders = append(holders, id)
	}
	return holders, nil
}

func (mdb *MongodbRepo) GetRegistrationsByUser(ctx context.Context, userId uuid.UUID) ([]*Registration, error) {
	col, err := mdb.GetCollection(ctx, RegistrationsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"userId": userId}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find registrations: %w", err)
	}
	defer cursor.Close(ctx)

	regs := []*Registration{}
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %w", err)
	}
	return regs, nil
}
