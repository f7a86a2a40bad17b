package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/queue"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory stand-in for MongodbRepo. Purchase holds the
// store lock for the whole call, which gives it the same all-or-nothing
// visibility as the database transaction.
type memStore struct {
	mu            sync.Mutex
	events        map[primitive.ObjectID]*models.Event
	registrations []*models.Registration
	payments      []*models.Payment
	tickets       []*models.Ticket
	notifications []*models.Notification
	saved         map[uuid.UUID]map[primitive.ObjectID]time.Time

	notifyErr     error
	saversErr     map[primitive.ObjectID]error
	eventsDaysErr error
	eventsDaysHit int
}

func newMemStore() *memStore {
	return &memStore{
		events:    map[primitive.ObjectID]*models.Event{},
		saved:     map[uuid.UUID]map[primitive.ObjectID]time.Time{},
		saversErr: map[primitive.ObjectID]error{},
	}
}

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	c.TicketTypes = append([]models.TicketType(nil), e.TicketTypes...)
	c.Images = append([]string(nil), e.Images...)
	return &c
}

func (m *memStore) addEvent(e *models.Event) *models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = cloneEvent(e)
	return e
}

func (m *memStore) event(id primitive.ObjectID) *models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneEvent(m.events[id])
}

// EventRepo

func (m *memStore) CreateEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	return m.addEvent(e), nil
}

func (m *memStore) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (m *memStore) GetEventsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Event{}
	for _, id := range ids {
		if e, ok := m.events[id]; ok {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

func (m *memStore) ListEvents(ctx context.Context, f models.EventFilter, offset, limit int) ([]*models.Event, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Event
	for _, e := range m.events {
		if e.Status == models.EventStatusPublished && (f.Category == "" || e.Category == f.Category) {
			all = append(all, cloneEvent(e))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	total := int64(len(all))
	if offset >= len(all) {
		return []*models.Event{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memStore) UpdateEvent(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	if v, ok := set["title"].(string); ok {
		e.Title = v
	}
	if v, ok := set["location"].(string); ok {
		e.Location = v
	}
	if v, ok := set["startTime"].(string); ok {
		e.StartTime = v
	}
	return cloneEvent(e), nil
}

func (m *memStore) TransitionEventStatus(ctx context.Context, id primitive.ObjectID, from []models.EventStatus, to models.EventStatus) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	for _, s := range from {
		if e.Status == s {
			e.Status = to
			return cloneEvent(e), nil
		}
	}
	return nil, models.ErrInvalidState
}

func (m *memStore) EventsOnDays(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsDaysHit++
	if m.eventsDaysErr != nil {
		return nil, m.eventsDaysErr
	}
	var out []*models.Event
	for _, e := range m.events {
		if e.Status == models.EventStatusPublished && !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

// PurchaseRepo

func (m *memStore) Purchase(ctx context.Context, req models.PurchaseRequest, now time.Time) (*models.PurchaseResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.events[req.EventID]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	event := cloneEvent(stored)
	tt, err := models.CheckPurchase(event, req.TicketTypeID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if tt.IsFree() {
		var held int64
		for _, t := range m.tickets {
			if t.UserID == req.BuyerID && t.EventID == req.EventID && t.TicketTypeID == tt.ID && t.Status != models.TicketCancelled {
				held++
			}
		}
		if err := models.CheckFreeTicketHolding(tt, held); err != nil {
			return nil, err
		}
	}

	tt.AvailableQuantity -= req.Quantity
	event.Attendees += req.Quantity
	reg, pay, tickets := models.NewPurchaseRecords(req, tt, now)
	payID := pay.ID
	reg.PaymentID = &payID

	m.events[event.ID] = cloneEvent(event)
	m.registrations = append(m.registrations, reg)
	m.payments = append(m.payments, pay)
	m.tickets = append(m.tickets, tickets...)

	return &models.PurchaseResult{Event: event, TicketType: *tt, Registration: reg, Payment: pay, Tickets: tickets}, nil
}

// TicketRepo

func (m *memStore) GetTicketsByUser(ctx context.Context, userID uuid.UUID) ([]*models.TicketView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.TicketView{}
	for _, t := range m.tickets {
		if t.UserID == userID {
			v := &models.TicketView{Ticket: *t}
			if e, ok := m.events[t.EventID]; ok {
				v.EventTitle = e.Title
				v.EventStatus = e.Status
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) GetTicketByID(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) FindFreeTicket(ctx context.Context, userID uuid.UUID, eventID primitive.ObjectID) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.UserID == userID && t.EventID == eventID && t.Price == 0 && t.Status != models.TicketCancelled {
			c := *t
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) TicketHolders(ctx context.Context, eventID primitive.ObjectID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, t := range m.tickets {
		if t.EventID == eventID && t.Status != models.TicketCancelled && !seen[t.UserID] {
			seen[t.UserID] = true
			out = append(out, t.UserID)
		}
	}
	return out, nil
}

func (m *memStore) GetRegistrationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Registration{}
	for _, r := range m.registrations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// NotificationRepo

func (m *memStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memStore) CreateNotifications(ctx context.Context, ns []*models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.notifications = append(m.notifications, ns...)
	return nil
}

func (m *memStore) InsertReminderIfAbsent(ctx context.Context, n *models.Notification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notifyErr != nil {
		return false, m.notifyErr
	}
	for _, existing := range m.notifications {
		if existing.Type == models.NotificationEventReminder &&
			existing.UserID == n.UserID &&
			*existing.RelatedEventID == *n.RelatedEventID &&
			existing.ReminderTag() == n.ReminderTag() {
			return false, nil
		}
	}
	m.notifications = append(m.notifications, n)
	return true, nil
}

func (m *memStore) userNotifications(userID uuid.UUID, unreadOnly bool) []*models.Notification {
	var out []*models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out
}

func (m *memStore) ListNotifications(ctx context.Context, userID uuid.UUID, q models.NotificationQuery) (*models.NotificationPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.userNotifications(userID, q.UnreadOnly)
	page := &models.NotificationPage{
		Total:       int64(len(all)),
		UnreadCount: int64(len(m.userNotifications(userID, true))),
		Items:       []*models.Notification{},
	}
	for i := q.Offset; i < len(all) && i < q.Offset+q.Limit; i++ {
		page.Items = append(page.Items, all[i])
	}
	return page, nil
}

func (m *memStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.userNotifications(userID, true))), nil
}

func (m *memStore) MarkRead(ctx context.Context, userID uuid.UUID, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.userNotifications(userID, true) {
		item.IsRead = true
		n++
	}
	return n, nil
}

func (m *memStore) DeleteNotification(ctx context.Context, userID uuid.UUID, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memStore) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.notifications[:0]
	var deleted int64
	for _, n := range m.notifications {
		if n.UserID == userID && n.IsRead {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return deleted, nil
}

// SavedEventRepo

func (m *memStore) SaveEvent(ctx context.Context, userID uuid.UUID, eventID primitive.ObjectID) (*models.SavedEvents, error) {
	m.mu.Lock()
	if m.saved[userID] == nil {
		m.saved[userID] = map[primitive.ObjectID]time.Time{}
	}
	m.saved[userID][eventID] = time.Now()
	m.mu.Unlock()
	return m.GetSavedEvents(ctx, userID)
}

func (m *memStore) UnsaveEvent(ctx context.Context, userID uuid.UUID, eventID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.saved[userID][eventID]; !ok {
		return models.ErrNotFound
	}
	delete(m.saved[userID], eventID)
	return nil
}

func (m *memStore) GetSavedEvents(ctx context.Context, userID uuid.UUID) (*models.SavedEvents, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &models.SavedEvents{UserID: userID, Items: map[string]models.SavedEventItem{}}
	for id, at := range m.saved[userID] {
		s.Items[id.Hex()] = models.SavedEventItem{EventID: id, AddedAt: at}
	}
	return s, nil
}

func (m *memStore) UsersWhoSaved(ctx context.Context, eventID primitive.ObjectID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saversErr[eventID]; err != nil {
		return nil, err
	}
	var out []uuid.UUID
	for userID, items := range m.saved {
		if _, ok := items[eventID]; ok {
			out = append(out, userID)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TicketPurchasedEvent
	err    error
}

func (p *recordingPublisher) PublishTicketPurchased(ctx context.Context, e queue.TicketPurchasedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

var errBoom = errors.New("boom")

func newPublishedEvent(price float64, quantity, max int, date time.Time, start string) *models.Event {
	e := &models.Event{
		Title:               "Go Conference",
		Date:                date,
		StartTime:           start,
		MaxTicketsPerPerson: max,
		OrganizerID:         uuid.New(),
		TicketTypes:         []models.TicketType{{Name: "General", Price: price, Quantity: quantity}},
	}
	e.BeforeCreate(time.Now())
	e.Status = models.EventStatusPublished
	return e
}
