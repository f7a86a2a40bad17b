// Package queue defines broker payloads and the RabbitMQ publisher.
package queue

// TicketPurchasedQueue is consumed by the mail worker that sends receipts.
const TicketPurchasedQueue = "ticket.purchased"

// TicketPurchasedEvent is published after a checkout commits. It carries
// enough for a receipt email without reading the database.
type TicketPurchasedEvent struct {
	RegistrationID string   `json:"registrationId"`
	PaymentID      string   `json:"paymentId"`
	TransactionID  string   `json:"transactionId"`
	UserID         string   `json:"userId"`
	EventID        string   `json:"eventId"`
	EventTitle     string   `json:"eventTitle"`
	EventDate      string   `json:"eventDate"`
	StartTime      string   `json:"startTime"`
	TicketTypeName string   `json:"ticketTypeName"`
	Quantity       int      `json:"quantity"`
	TotalAmount    float64  `json:"totalAmount"`
	Currency       string   `json:"currency"`
	AttendeeName   string   `json:"attendeeName"`
	AttendeeEmail  string   `json:"attendeeEmail"`
	TicketCodes    []string `json:"ticketCodes"`
	PurchasedAt    string   `json:"purchasedAt"`
}
