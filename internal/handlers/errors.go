package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Nanpapu/eventhub-sub001/internal/helpers"
	"github.com/Nanpapu/eventhub-sub001/internal/middleware"
	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInvalidTokenResponse = errors.New("identity provider returned an unexpected token response")

// statusFor maps domain errors to HTTP status codes. Zero means the error
// is unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrInvalidTicketType),
		errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrQuantityLimitExceeded),
		errors.Is(err, models.ErrFreeTicketLimitExceeded):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientInventory),
		errors.Is(err, models.ErrDuplicateFreeTicket),
		errors.Is(err, models.ErrEventNotPublished),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, helpers.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return 0
}

// respondError writes a 4xx with the domain message, or hands anything
// unexpected to the ErrorHandler middleware which logs it and answers 500.
func respondError(c *gin.Context, err error) {
	if status := statusFor(err); status != 0 {
		c.JSON(status, models.ErrorResponse(publicMessage(err)))
		return
	}
	c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse("Internal server error"))
}

// publicMessage strips the wrapping added by services for validation
// errors so callers see which field failed.
func publicMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, models.ErrValidation) {
		if _, rest, ok := strings.Cut(msg, models.ErrValidation.Error()+": "); ok {
			return rest
		}
	}
	return msg
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse(msg))
}

func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param(name)))
	if err != nil {
		badRequest(c, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
		return uuid.Nil, false
	}
	return id, true
}

func currentActor(c *gin.Context) (services.Actor, bool) {
	id, ok := currentUser(c)
	if !ok {
		return services.Actor{}, false
	}
	claims, _ := middleware.Claims(c)
	return services.Actor{ID: id, IsAdmin: claims != nil && claims.IsAdmin()}, true
}
