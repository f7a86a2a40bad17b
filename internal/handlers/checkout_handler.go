package handlers

import (
	"net/http"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type checkoutRequest struct {
	EventID              string `json:"eventId" binding:"required"`
	TicketTypeID         string `json:"ticketTypeId" binding:"required"`
	Quantity             int    `json:"quantity"`
	FullName             string `json:"fullName" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Phone                string `json:"phone"`
	PaymentMethodDetails struct {
		Type string `json:"type" binding:"required"`
	} `json:"paymentMethodDetails" binding:"required"`
}

func (r *checkoutRequest) input() (services.CheckoutInput, bool) {
	eventID, err := primitive.ObjectIDFromHex(r.EventID)
	if err != nil {
		return services.CheckoutInput{}, false
	}
	ttID, err := primitive.ObjectIDFromHex(r.TicketTypeID)
	if err != nil {
		return services.CheckoutInput{}, false
	}
	return services.CheckoutInput{
		EventID:      eventID,
		TicketTypeID: ttID,
		Quantity:     r.Quantity,
		Contact: models.AttendeeContact{
			FullName: r.FullName,
			Email:    r.Email,
			Phone:    r.Phone,
		},
		PaymentType: r.PaymentMethodDetails.Type,
	}, true
}

// ProcessPayment runs the demo gateway and, on success, the purchase.
func ProcessPayment(cs *services.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := currentUser(c)
		if !ok {
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request payload", "error": err.Error()})
			return
		}
		in, ok := req.input()
		if !ok {
			badRequest(c, "invalid eventId or ticketTypeId")
			return
		}

		res, err := cs.ProcessPayment(c.Request.Context(), buyer, in)
		if err != nil {
			respondError(c, err)
			return
		}

		codes := make([]string, len(res.Tickets))
		for i, t := range res.Tickets {
			codes[i] = t.Code
		}
		c.JSON(http.StatusOK, gin.H{
			"success":              true,
			"message":              "Payment successful, tickets issued",
			"transactionId":        res.Payment.TransactionID,
			"registrationId":       res.Registration.ID.Hex(),
			"totalAmount":          res.Registration.TotalAmount,
			"ticketCodes":          codes,
			"eventId":              req.EventID,
			"ticketTypeId":         req.TicketTypeID,
			"quantity":             req.Quantity,
			"fullName":             req.FullName,
			"email":                req.Email,
			"phone":                req.Phone,
			"paymentMethodDetails": req.PaymentMethodDetails,
		})
	}
}
