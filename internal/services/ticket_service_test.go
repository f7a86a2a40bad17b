package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/google/uuid"
)

func TestTicketQueries(t *testing.T) {
	store := newMemStore()
	free := store.addEvent(newPublishedEvent(0, 10, 1, time.Now().AddDate(0, 1, 0), "12:00"))
	paid := store.addEvent(newPublishedEvent(30, 10, 3, time.Now().AddDate(0, 1, 0), "12:00"))
	cs := newCheckout(store, nil)
	ts := NewTicketService(store)
	buyer := uuid.New()
	ctx := context.Background()

	status, err := ts.FreeTicketStatus(ctx, buyer, free.ID)
	if err != nil || status.HasFreeTicket {
		t.Fatalf("status before purchase = %+v, %v", status, err)
	}

	if _, err := cs.ProcessPayment(ctx, buyer, checkoutInput(free, 1, DemoSuccess)); err != nil {
		t.Fatal(err)
	}
	if _, err := cs.ProcessPayment(ctx, buyer, checkoutInput(paid, 2, DemoSuccess)); err != nil {
		t.Fatal(err)
	}

	status, err = ts.FreeTicketStatus(ctx, buyer, free.ID)
	if err != nil || !status.HasFreeTicket || status.TicketID == nil {
		t.Fatalf("status after purchase = %+v, %v", status, err)
	}
	if s, _ := ts.FreeTicketStatus(ctx, buyer, paid.ID); s.HasFreeTicket {
		t.Error("paid event reported a free ticket")
	}

	mine, err := ts.MyTickets(ctx, buyer)
	if err != nil || len(mine) != 3 {
		t.Fatalf("MyTickets = %d, %v; want 3", len(mine), err)
	}
	if mine[0].EventTitle == "" {
		t.Error("ticket view missing event title")
	}

	if _, err := ts.GetTicket(ctx, buyer, *status.TicketID); err != nil {
		t.Errorf("owner GetTicket: %v", err)
	}
	if _, err := ts.GetTicket(ctx, uuid.New(), *status.TicketID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("stranger GetTicket error = %v, want ErrNotFound", err)
	}

	regs, err := ts.MyRegistrations(ctx, buyer)
	if err != nil || len(regs) != 2 {
		t.Errorf("MyRegistrations = %d, %v; want 2", len(regs), err)
	}
}

func TestSavedEvents(t *testing.T) {
	store := newMemStore()
	e := store.addEvent(newPublishedEvent(10, 10, 3, time.Now().AddDate(0, 1, 0), "12:00"))
	ss := NewSavedEventService(store, store)
	user := uuid.New()
	ctx := context.Background()

	if _, err := ss.SaveEvent(ctx, user, e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := ss.SaveEvent(ctx, user, newPublishedEvent(1, 1, 1, time.Now(), "10:00").ID); !errors.Is(err, models.ErrEventNotFound) {
		t.Errorf("saving unknown event error = %v", err)
	}

	list, err := ss.SavedEvents(ctx, user)
	if err != nil || len(list) != 1 || list[0].ID != e.ID {
		t.Fatalf("SavedEvents = %v, %v", list, err)
	}

	if err := ss.UnsaveEvent(ctx, user, e.ID); err != nil {
		t.Fatal(err)
	}
	if err := ss.UnsaveEvent(ctx, user, e.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second unsave error = %v, want ErrNotFound", err)
	}
}
