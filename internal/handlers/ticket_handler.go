package handlers

import (
	"net/http"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/services"
	"github.com/gin-gonic/gin"
)

func MyTickets(ts *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		tickets, err := ts.MyTickets(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if tickets == nil {
			tickets = []*models.TicketView{}
		}
		c.JSON(http.StatusOK, models.SuccessResponse(tickets, ""))
	}
}

// FreeTicketStatus reports whether the caller already claimed a free
// ticket for the event.
func FreeTicketStatus(ts *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		eventID, ok := objectIDParam(c, "eventId")
		if !ok {
			return
		}
		status, err := ts.FreeTicketStatus(c.Request.Context(), userID, eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(status, ""))
	}
}

func GetTicket(ts *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		ticket, err := ts.GetTicket(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(ticket, ""))
	}
}

func MyRegistrations(ts *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		regs, err := ts.MyRegistrations(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if regs == nil {
			regs = []*models.Registration{}
		}
		c.JSON(http.StatusOK, models.SuccessResponse(regs, ""))
	}
}
