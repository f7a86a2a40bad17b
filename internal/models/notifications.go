package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTicketConfirmation NotificationType = "ticket_confirmation"
	NotificationEventUpdate        NotificationType = "event_update"
	NotificationEventReminder      NotificationType = "event_reminder"
	NotificationSystemMessage      NotificationType = "system_message"
)

// ReminderDataKey is the data field that de-duplicates reminders per window.
const ReminderDataKey = "reminderTypeSent"

type Notification struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         uuid.UUID           `bson:"userId" json:"userId"`
	Type           NotificationType    `bson:"type" json:"type"`
	Title          string              `bson:"title" json:"title"`
	Message        string              `bson:"message" json:"message"`
	RelatedEventID *primitive.ObjectID `bson:"relatedEventId,omitempty" json:"relatedEventId,omitempty"`
	Data           map[string]any      `bson:"data,omitempty" json:"data,omitempty"`
	IsRead         bool                `bson:"isRead" json:"isRead"`
	ReadAt         *time.Time          `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (n *Notification) BeforeCreate(now time.Time) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = now
	n.UpdatedAt = now
}

// ReminderTag returns the window tag stored on a reminder, or "".
func (n *Notification) ReminderTag() string {
	if n.Data == nil {
		return ""
	}
	tag, _ := n.Data[ReminderDataKey].(string)
	return tag
}

// ReminderWindow is one look-ahead interval of the reminder sweep.
type ReminderWindow struct {
	Tag    string
	Offset time.Duration
	Label  string
}

// ReminderWindows are swept in this order on every tick.
var ReminderWindows = []ReminderWindow{
	{Tag: "1day", Offset: 24 * time.Hour, Label: "in 24 hours"},
	{Tag: "3days", Offset: 72 * time.Hour, Label: "in 3 days"},
	{Tag: "2hour", Offset: 2 * time.Hour, Label: "in 2 hours"},
}

// ReminderWindowWidth is the width of each look-ahead interval.
const ReminderWindowWidth = time.Hour

// Bounds returns the half-open interval [now+Offset, now+Offset+width).
func (w ReminderWindow) Bounds(now time.Time) (time.Time, time.Time) {
	from := now.Add(w.Offset)
	return from, from.Add(ReminderWindowWidth)
}

type NotificationQuery struct {
	UnreadOnly bool
	Offset     int
	Limit      int
}

type NotificationPage struct {
	Items       []*Notification
	Total       int64
	UnreadCount int64
}
