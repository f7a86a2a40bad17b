package models

import (
	"testing"
	"time"
)

func TestEventBeforeCreate(t *testing.T) {
	e := &Event{
		Title:     "Launch",
		StartTime: "09:00",
		TicketTypes: []TicketType{
			{Name: "Early", Price: 5, Quantity: 20},
			{Name: "Free", Price: 0, Quantity: 50, AvailableQuantity: 3},
		},
		Attendees: 99,
	}
	e.BeforeCreate(time.Now())

	if e.ID.IsZero() {
		t.Error("ID not assigned")
	}
	if e.Status != EventStatusDraft {
		t.Errorf("Status = %s, want draft", e.Status)
	}
	if e.MaxTicketsPerPerson != DefaultMaxTicketsPerPerson {
		t.Errorf("MaxTicketsPerPerson = %d", e.MaxTicketsPerPerson)
	}
	if e.Attendees != 0 {
		t.Errorf("Attendees = %d, want 0", e.Attendees)
	}
	for _, tt := range e.TicketTypes {
		if tt.ID.IsZero() {
			t.Errorf("ticket type %q has no id", tt.Name)
		}
		if tt.AvailableQuantity != tt.Quantity {
			t.Errorf("ticket type %q available = %d, want %d", tt.Name, tt.AvailableQuantity, tt.Quantity)
		}
	}
}

func TestEventStartsAt(t *testing.T) {
	e := &Event{
		Date:      time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
		StartTime: "19:45",
	}

	got, err := e.StartsAt(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 5, 20, 19, 45, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("StartsAt = %v, want %v", got, want)
	}

	loc := time.FixedZone("UTC+7", 7*3600)
	got, err = e.StartsAt(loc)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 5, 20, 12, 45, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("StartsAt(UTC+7) = %v, want %v", got.UTC(), want)
	}

	e.StartTime = "7pm"
	if _, err := e.StartsAt(time.UTC); err == nil {
		t.Error("expected error for malformed start time")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"00:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{" 8:05 ", 8, 5, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"1230", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		h, m, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (h != tt.h || m != tt.m) {
			t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.h, tt.m)
		}
	}
}

func TestEventUpdateFields(t *testing.T) {
	title := "  New title "
	online := true
	set, changed := EventUpdate{Title: &title, IsOnline: &online}.Fields()

	if len(changed) != 2 {
		t.Fatalf("changed = %v", changed)
	}
	if set["title"] != "New title" {
		t.Errorf("title = %q", set["title"])
	}
	if set["isOnline"] != true {
		t.Errorf("isOnline = %v", set["isOnline"])
	}

	set, changed = EventUpdate{}.Fields()
	if len(set) != 0 || len(changed) != 0 {
		t.Errorf("empty update produced %v", set)
	}
}

func TestReminderWindowBounds(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	for _, w := range ReminderWindows {
		from, to := w.Bounds(now)
		if !from.Equal(now.Add(w.Offset)) {
			t.Errorf("%s: from = %v", w.Tag, from)
		}
		if to.Sub(from) != ReminderWindowWidth {
			t.Errorf("%s: width = %v", w.Tag, to.Sub(from))
		}
	}
	if ReminderWindows[0].Tag != "1day" || ReminderWindows[1].Tag != "3days" || ReminderWindows[2].Tag != "2hour" {
		t.Errorf("unexpected window order: %+v", ReminderWindows)
	}
}
