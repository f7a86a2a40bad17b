package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCompleted PaymentStatus = "completed"
)

type AttendeeContact struct {
	FullName string `bson:"fullName" json:"fullName" validate:"required,min=2,max=100"`
	Email    string `bson:"email" json:"email" validate:"required,email"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,max=30"`
}

// Registration records one checkout that reached the confirmed state.
type Registration struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID        primitive.ObjectID  `bson:"eventId" json:"eventId"`
	UserID         uuid.UUID           `bson:"userId" json:"userId"`
	TicketTypeID   primitive.ObjectID  `bson:"ticketTypeId" json:"ticketTypeId"`
	TicketTypeName string              `bson:"ticketTypeName" json:"ticketTypeName"`
	Quantity       int                 `bson:"quantity" json:"quantity"`
	TotalAmount    float64             `bson:"totalAmount" json:"totalAmount"`
	Attendee       AttendeeContact     `bson:"attendee" json:"attendee"`
	Status         RegistrationStatus  `bson:"status" json:"status"`
	PaymentStatus  PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	PaymentID      *primitive.ObjectID `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RegistrationID primitive.ObjectID `bson:"registrationId" json:"registrationId"`
	EventID        primitive.ObjectID `bson:"eventId" json:"eventId"`
	UserID         uuid.UUID          `bson:"userId" json:"userId"`
	Amount         float64            `bson:"amount" json:"amount"`
	Currency       string             `bson:"currency" json:"currency"`
	Method         string             `bson:"method" json:"method"`
	Status         PaymentStatus      `bson:"status" json:"status"`
	TransactionID  string             `bson:"transactionId" json:"transactionId"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
