package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func publishedEvent(price float64, quantity, max int) *Event {
	e := &Event{
		Title:               "Go Meetup",
		StartTime:           "18:30",
		Status:              EventStatusPublished,
		MaxTicketsPerPerson: max,
		TicketTypes: []TicketType{
			{Name: "General", Price: price, Quantity: quantity},
		},
	}
	e.BeforeCreate(time.Now())
	e.Status = EventStatusPublished
	return e
}

func TestCheckPurchase(t *testing.T) {
	paid := publishedEvent(25, 10, 3)
	free := publishedEvent(0, 10, 3)
	draft := publishedEvent(25, 10, 3)
	draft.Status = EventStatusDraft
	lowStock := publishedEvent(25, 2, 5)

	tests := []struct {
		name     string
		event    *Event
		ttID     primitive.ObjectID
		quantity int
		want     error
	}{
		{"missing event", nil, primitive.NewObjectID(), 1, ErrEventNotFound},
		{"draft event", draft, draft.TicketTypes[0].ID, 1, ErrEventNotPublished},
		{"unknown ticket type", paid, primitive.NewObjectID(), 1, ErrInvalidTicketType},
		{"zero quantity", paid, paid.TicketTypes[0].ID, 0, ErrInvalidQuantity},
		{"negative quantity", paid, paid.TicketTypes[0].ID, -2, ErrInvalidQuantity},
		{"more than stock", lowStock, lowStock.TicketTypes[0].ID, 3, ErrInsufficientInventory},
		{"over per-person cap", paid, paid.TicketTypes[0].ID, 4, ErrQuantityLimitExceeded},
		{"two free tickets", free, free.TicketTypes[0].ID, 2, ErrFreeTicketLimitExceeded},
		{"valid paid", paid, paid.TicketTypes[0].ID, 3, nil},
		{"valid free", free, free.TicketTypes[0].ID, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckPurchase(tt.event, tt.ttID, tt.quantity)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CheckPurchase() error = %v, want %v", err, tt.want)
			}
			if tt.want == nil && got == nil {
				t.Fatal("expected ticket type on success")
			}
		})
	}
}

func TestCheckPurchaseInventoryBeforeCap(t *testing.T) {
	// 8 exceeds both stock (7) and the cap (3); stock is reported first
	e := publishedEvent(25, 10, 3)
	e.TicketTypes[0].AvailableQuantity = 7

	_, err := CheckPurchase(e, e.TicketTypes[0].ID, 8)
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("error = %v, want ErrInsufficientInventory", err)
	}
}

func TestCheckFreeTicketHolding(t *testing.T) {
	free := TicketType{Price: 0}
	paid := TicketType{Price: 10}

	if err := CheckFreeTicketHolding(&free, 0); err != nil {
		t.Errorf("first free ticket rejected: %v", err)
	}
	if err := CheckFreeTicketHolding(&free, 1); !errors.Is(err, ErrDuplicateFreeTicket) {
		t.Errorf("second free ticket error = %v, want ErrDuplicateFreeTicket", err)
	}
	if err := CheckFreeTicketHolding(&paid, 5); err != nil {
		t.Errorf("paid ticket should ignore holdings: %v", err)
	}
}

func TestNewPurchaseRecords(t *testing.T) {
	e := publishedEvent(12.5, 10, 3)
	tt := &e.TicketTypes[0]
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	req := PurchaseRequest{
		BuyerID:      uuid.New(),
		EventID:      e.ID,
		TicketTypeID: tt.ID,
		Quantity:     3,
		Contact:      AttendeeContact{FullName: "Ada Lovelace", Email: "ada@example.com"},
	}

	reg, pay, tickets := NewPurchaseRecords(req, tt, now)

	if reg.TotalAmount != 37.5 {
		t.Errorf("TotalAmount = %v, want 37.5", reg.TotalAmount)
	}
	if reg.Status != RegistrationConfirmed || reg.PaymentStatus != PaymentPaid {
		t.Errorf("registration status = %s/%s", reg.Status, reg.PaymentStatus)
	}
	if pay.RegistrationID != reg.ID || pay.Amount != reg.TotalAmount || pay.Status != PaymentCompleted {
		t.Errorf("payment not linked to registration: %+v", pay)
	}
	if !strings.HasPrefix(pay.TransactionID, "DEMO-1772366400-") {
		t.Errorf("TransactionID = %q", pay.TransactionID)
	}
	if len(tickets) != 3 {
		t.Fatalf("len(tickets) = %d, want 3", len(tickets))
	}
	codes := map[string]bool{}
	for _, tk := range tickets {
		if tk.Quantity != 1 || tk.Status != TicketPaid || tk.PaymentID != pay.ID || tk.RegistrationID != reg.ID {
			t.Errorf("bad ticket %+v", tk)
		}
		codes[tk.Code] = true
	}
	if len(codes) != 3 {
		t.Error("ticket codes are not unique")
	}
}
