package services

import (
	"context"
	"errors"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TicketService struct {
	tickets models.TicketRepo
}

func NewTicketService(tickets models.TicketRepo) *TicketService {
	return &TicketService{tickets: tickets}
}

func (ts *TicketService) MyTickets(ctx context.Context, userID uuid.UUID) ([]*models.TicketView, error) {
	return ts.tickets.GetTicketsByUser(ctx, userID)
}

// GetTicket hides tickets owned by someone else behind ErrNotFound.
func (ts *TicketService) GetTicket(ctx context.Context, userID uuid.UUID, id primitive.ObjectID) (*models.Ticket, error) {
	ticket, err := ts.tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != userID {
		return nil, models.ErrNotFound
	}
	return ticket, nil
}

func (ts *TicketService) FreeTicketStatus(ctx context.Context, userID uuid.UUID, eventID primitive.ObjectID) (*models.FreeTicketStatus, error) {
	status := &models.FreeTicketStatus{EventID: eventID}
	ticket, err := ts.tickets.FindFreeTicket(ctx, userID, eventID)
	if errors.Is(err, models.ErrNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, err
	}
	id := ticket.ID
	status.HasFreeTicket = true
	status.TicketID = &id
	return status, nil
}

func (ts *TicketService) MyRegistrations(ctx context.Context, userID uuid.UUID) ([]*models.Registration, error) {
	return ts.tickets.GetRegistrationsByUser(ctx, userID)
}
