package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

// DefaultMaxTicketsPerPerson applies when an event is created without a cap.
const DefaultMaxTicketsPerPerson = 10

type TicketType struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	Name              string             `bson:"name" json:"name" validate:"required,max=100"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Price             float64            `bson:"price" json:"price" validate:"gte=0"`
	Quantity          int                `bson:"quantity" json:"quantity" validate:"gte=1"`
	AvailableQuantity int                `bson:"availableQuantity" json:"availableQuantity"`
	SaleStartDate     *time.Time         `bson:"saleStartDate,omitempty" json:"saleStartDate,omitempty"`
	SaleEndDate       *time.Time         `bson:"saleEndDate,omitempty" json:"saleEndDate,omitempty"`
}

func (tt TicketType) IsFree() bool {
	return tt.Price == 0
}

func (tt TicketType) Sold() int {
	return tt.Quantity - tt.AvailableQuantity
}

type Event struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizerID         uuid.UUID          `bson:"organizerId" json:"organizerId"`
	Title               string             `bson:"title" json:"title" validate:"required,min=3,max=200"`
	Description         string             `bson:"description" json:"description"`
	Category            string             `bson:"category,omitempty" json:"category,omitempty"`
	Date                time.Time          `bson:"date" json:"date" validate:"required"`
	StartTime           string             `bson:"startTime" json:"startTime" validate:"required,datetime=15:04"`
	EndTime             string             `bson:"endTime,omitempty" json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
	Location            string             `bson:"location,omitempty" json:"location,omitempty"`
	Address             string             `bson:"address,omitempty" json:"address,omitempty"`
	IsOnline            bool               `bson:"isOnline" json:"isOnline"`
	OnlineURL           string             `bson:"onlineUrl,omitempty" json:"onlineUrl,omitempty" validate:"omitempty,url"`
	Capacity            int                `bson:"capacity" json:"capacity" validate:"gte=0"`
	MaxTicketsPerPerson int                `bson:"maxTicketsPerPerson" json:"maxTicketsPerPerson" validate:"gte=0"`
	Attendees           int                `bson:"attendees" json:"attendees"`
	Status              EventStatus        `bson:"status" json:"status"`
	Images              []string           `bson:"images,omitempty" json:"images,omitempty"`
	TicketTypes         []TicketType       `bson:"ticketTypes" json:"ticketTypes" validate:"dive"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (e *Event) BeforeCreate(now time.Time) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Status == "" {
		e.Status = EventStatusDraft
	}
	if e.MaxTicketsPerPerson == 0 {
		e.MaxTicketsPerPerson = DefaultMaxTicketsPerPerson
	}
	for i := range e.TicketTypes {
		if e.TicketTypes[i].ID.IsZero() {
			e.TicketTypes[i].ID = primitive.NewObjectID()
		}
		e.TicketTypes[i].AvailableQuantity = e.TicketTypes[i].Quantity
	}
	e.Attendees = 0
	e.CreatedAt = now
	e.UpdatedAt = now
}

func (e *Event) IsPublished() bool {
	return e.Status == EventStatusPublished
}

// FindTicketType returns a pointer into e.TicketTypes, or nil.
func (e *Event) FindTicketType(id primitive.ObjectID) *TicketType {
	for i := range e.TicketTypes {
		if e.TicketTypes[i].ID == id {
			return &e.TicketTypes[i]
		}
	}
	return nil
}

// StartsAt combines the calendar day of Date with StartTime in loc.
func (e *Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	hour, minute, err := ParseClock(e.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := e.Date.UTC().Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc), nil
}

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// EventUpdate carries the display fields an organizer may change after
// creation. Inventory and status are managed by dedicated operations.
type EventUpdate struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Date        *time.Time `json:"date"`
	StartTime   *string    `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime     *string    `json:"endTime" validate:"omitempty,datetime=15:04"`
	Location    *string    `json:"location"`
	Address     *string    `json:"address"`
	IsOnline    *bool      `json:"isOnline"`
	OnlineURL   *string    `json:"onlineUrl" validate:"omitempty,url"`
}

// Fields returns the bson $set document and a list of changed field names.
func (u EventUpdate) Fields() (map[string]any, []string) {
	set := map[string]any{}
	var changed []string
	add := func(key string, v any) {
		set[key] = v
		changed = append(changed, key)
	}
	if u.Title != nil {
		add("title", strings.TrimSpace(*u.Title))
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Category != nil {
		add("category", *u.Category)
	}
	if u.Date != nil {
		add("date", *u.Date)
	}
	if u.StartTime != nil {
		add("startTime", *u.StartTime)
	}
	if u.EndTime != nil {
		add("endTime", *u.EndTime)
	}
	if u.Location != nil {
		add("location", *u.Location)
	}
	if u.Address != nil {
		add("address", *u.Address)
	}
	if u.IsOnline != nil {
		add("isOnline", *u.IsOnline)
	}
	if u.OnlineURL != nil {
		add("onlineUrl", *u.OnlineURL)
	}
	return set, changed
}

type EventFilter struct {
	Category string
	Search   string
	Upcoming bool
	Now      time.Time
}
