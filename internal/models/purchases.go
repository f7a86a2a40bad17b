package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentMethodDemo = "demo"
	DefaultCurrency   = "USD"
)

type PurchaseRequest struct {
	BuyerID      uuid.UUID
	EventID      primitive.ObjectID
	TicketTypeID primitive.ObjectID
	Quantity     int
	Contact      AttendeeContact
}

type PurchaseResult struct {
	Event        *Event
	TicketType   TicketType
	Registration *Registration
	Payment      *Payment
	Tickets      []*Ticket
}

// CheckPurchase applies the purchase preconditions against a snapshot of
// the event, stopping at the first failure. The free-ticket holding check
// needs a database lookup and is done separately by CheckFreeTicketHolding.
func CheckPurchase(event *Event, ticketTypeID primitive.ObjectID, quantity int) (*TicketType, error) {
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.IsPublished() {
		return nil, ErrEventNotPublished
	}
	tt := event.FindTicketType(ticketTypeID)
	if tt == nil {
		return nil, ErrInvalidTicketType
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if quantity > tt.AvailableQuantity {
		return nil, ErrInsufficientInventory
	}
	if event.MaxTicketsPerPerson > 0 && quantity > event.MaxTicketsPerPerson {
		return nil, ErrQuantityLimitExceeded
	}
	if tt.IsFree() && quantity != 1 {
		return nil, ErrFreeTicketLimitExceeded
	}
	return tt, nil
}

// CheckFreeTicketHolding rejects a free purchase when the buyer already
// holds heldCount non-cancelled tickets of the same free type.
func CheckFreeTicketHolding(tt *TicketType, heldCount int64) error {
	if tt.IsFree() && heldCount > 0 {
		return ErrDuplicateFreeTicket
	}
	return nil
}

// NewTransactionID returns a demo gateway reference.
func NewTransactionID(now time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("DEMO-%d-%s", now.Unix(), short)
}

// NewPurchaseRecords builds the registration, payment and ticket documents
// for a validated purchase. IDs are fresh on every call so a retried
// transaction never reuses a half-written document.
func NewPurchaseRecords(req PurchaseRequest, tt *TicketType, now time.Time) (*Registration, *Payment, []*Ticket) {
	total := tt.Price * float64(req.Quantity)

	reg := &Registration{
		ID:             primitive.NewObjectID(),
		EventID:        req.EventID,
		UserID:         req.BuyerID,
		TicketTypeID:   tt.ID,
		TicketTypeName: tt.Name,
		Quantity:       req.Quantity,
		TotalAmount:    total,
		Attendee:       req.Contact,
		Status:         RegistrationConfirmed,
		PaymentStatus:  PaymentPaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	pay := &Payment{
		ID:             primitive.NewObjectID(),
		RegistrationID: reg.ID,
		EventID:        req.EventID,
		UserID:         req.BuyerID,
		Amount:         total,
		Currency:       DefaultCurrency,
		Method:         PaymentMethodDemo,
		Status:         PaymentCompleted,
		TransactionID:  NewTransactionID(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tickets := make([]*Ticket, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		tickets = append(tickets, &Ticket{
			ID:             primitive.NewObjectID(),
			Code:           uuid.NewString(),
			EventID:        req.EventID,
			UserID:         req.BuyerID,
			RegistrationID: reg.ID,
			PaymentID:      pay.ID,
			TicketTypeID:   tt.ID,
			TicketTypeName: tt.Name,
			Price:          tt.Price,
			Quantity:       1,
			Status:         TicketPaid,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return reg, pay, tickets
}
