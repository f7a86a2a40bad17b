package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type PurchaseRepo interface {
	// Purchase runs the whole checkout as one transaction. Any returned
	// error means nothing was written.
	Purchase(ctx context.Context, req PurchaseRequest, now time.Time) (*PurchaseResult, error)
}

func (mdb *MongodbRepo) Purchase(ctx context.Context, req PurchaseRequest, now time.Time) (*PurchaseResult, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}

	session, err := mdb.mongodbClient.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	out, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return mdb.purchaseInTxn(sc, req, now)
	}, txnOpts)
	if err != nil {
		return nil, err
	}
	return out.(*PurchaseResult), nil
}

// purchaseInTxn may run more than once when the driver retries a transient
// transaction error, so it builds fresh documents each time.
func (mdb *MongodbRepo) purchaseInTxn(sc mongo.SessionContext, req PurchaseRequest, now time.Time) (*PurchaseResult, error) {
	events, err := mdb.GetCollection(sc, EventsCollection)
	if err != nil {
		return nil, err
	}

	var event Event
	err = events.FindOne(sc, bson.M{"_id": req.EventID}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	tt, err := CheckPurchase(&event, req.TicketTypeID, req.Quantity)
	if err != nil {
		return nil, err
	}

	if tt.IsFree() {
		held, err := mdb.countHeldTickets(sc, req, tt)
		if err != nil {
			return nil, err
		}
		if err := CheckFreeTicketHolding(tt, held); err != nil {
			return nil, err
		}
	}

	res, err := events.UpdateOne(sc, inventoryFilter(event.ID, tt.ID, req.Quantity), inventoryUpdate(req.Quantity, now))
	if err != nil {
		return nil, fmt.Errorf("failed to decrement inventory: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrInsufficientInventory
	}

	reg, pay, tickets := NewPurchaseRecords(req, tt, now)

	registrations, err := mdb.GetCollection(sc, RegistrationsCollection)
	if err != nil {
		return nil, err
	}
	if _, err := registrations.InsertOne(sc, reg); err != nil {
		return nil, fmt.Errorf("failed to insert registration: %w", err)
	}

	payments, err := mdb.GetCollection(sc, PaymentsCollection)
	if err != nil {
		return nil, err
	}
	if _, err := payments.InsertOne(sc, pay); err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	_, err = registrations.UpdateOne(sc,
		bson.M{"_id": reg.ID},
		bson.M{"$set": bson.M{"paymentId": pay.ID, "updatedAt": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to link payment: %w", err)
	}
	paymentID := pay.ID
	reg.PaymentID = &paymentID

	ticketCol, err := mdb.GetCollection(sc, TicketsCollection)
	if err != nil {
		return nil, err
	}
	docs := make([]interface{}, len(tickets))
	for i, t := range tickets {
		docs[i] = t
	}
	if _, err := ticketCol.InsertMany(sc, docs); err != nil {
		return nil, fmt.Errorf("failed to insert tickets: %w", err)
	}

	tt.AvailableQuantity -= req.Quantity
	event.Attendees += req.Quantity
	event.UpdatedAt = now

	return &PurchaseResult{
		Event:        &event,
		TicketType:   *tt,
		Registration: reg,
		Payment:      pay,
		Tickets:      tickets,
	}, nil
}

// inventoryFilter matches only while enough stock remains, so a competing
// purchase that already took the stock leaves nothing to match.
func inventoryFilter(eventID, ticketTypeID primitive.ObjectID, quantity int) bson.M {
	return bson.M{
		"_id":    eventID,
		"status": EventStatusPublished,
		"ticketTypes": bson.M{"$elemMatch": bson.M{
			"_id":               ticketTypeID,
			"availableQuantity": bson.M{"$gte": quantity},
		}},
	}
}

func inventoryUpdate(quantity int, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"ticketTypes.$.availableQuantity": -quantity,
			"attendees":                       quantity,
		},
		"$set": bson.M{"updatedAt": now},
	}
}

func (mdb *MongodbRepo) countHeldTickets(sc mongo.SessionContext, req PurchaseRequest, tt *TicketType) (int64, error) {
	col, err := mdb.GetCollection(sc, TicketsCollection)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(sc, bson.M{
		"userId":       req.BuyerID,
		"eventId":      req.EventID,
		"ticketTypeId": tt.ID,
		"status":       bson.M{"$ne": TicketCancelled},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count held tickets: %w", err)
	}
	return n, nil
}
