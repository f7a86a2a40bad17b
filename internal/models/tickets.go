package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TicketStatus string

const (
	TicketReserved  TicketStatus = "reserved"
	TicketPaid      TicketStatus = "paid"
	TicketCancelled TicketStatus = "cancelled"
	TicketUsed      TicketStatus = "used"
)

// Ticket is one admission unit; Quantity is always 1.
type Ticket struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code           string             `bson:"code" json:"code"`
	EventID        primitive.ObjectID `bson:"eventId" json:"eventId"`
	UserID         uuid.UUID          `bson:"userId" json:"userId"`
	RegistrationID primitive.ObjectID `bson:"registrationId" json:"registrationId"`
	PaymentID      primitive.ObjectID `bson:"paymentId" json:"paymentId"`
	TicketTypeID   primitive.ObjectID `bson:"ticketTypeId" json:"ticketTypeId"`
	TicketTypeName string             `bson:"ticketTypeName" json:"ticketTypeName"`
	Price          float64            `bson:"price" json:"price"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	Status         TicketStatus       `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TicketView is a ticket joined with the event fields shown in "my tickets".
type TicketView struct {
	Ticket        `bson:",inline"`
	EventTitle    string      `bson:"eventTitle" json:"eventTitle"`
	EventDate     time.Time   `bson:"eventDate" json:"eventDate"`
	EventStart    string      `bson:"eventStartTime" json:"eventStartTime"`
	EventLocation string      `bson:"eventLocation" json:"eventLocation"`
	EventIsOnline bool        `bson:"eventIsOnline" json:"eventIsOnline"`
	EventImage    string      `bson:"eventImage,omitempty" json:"eventImage,omitempty"`
	EventStatus   EventStatus `bson:"eventStatus" json:"eventStatus"`
}

// FreeTicketStatus answers whether a user already holds a free ticket for an event.
type FreeTicketStatus struct {
	EventID       primitive.ObjectID  `json:"eventId"`
	HasFreeTicket bool                `json:"hasFreeTicket"`
	TicketID      *primitive.ObjectID `json:"ticketId,omitempty"`
}
