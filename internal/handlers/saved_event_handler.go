package handlers

import (
	"net/http"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/services"
	"github.com/gin-gonic/gin"
)

func SaveEvent(ss *services.SavedEventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if _, err := ss.SaveEvent(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"eventId": id.Hex()}, "event saved"))
	}
}

func UnsaveEvent(ss *services.SavedEventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if err := ss.UnsaveEvent(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "event removed from saved list"))
	}
}

func SavedEvents(ss *services.SavedEventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		events, err := ss.SavedEvents(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if events == nil {
			events = []*models.Event{}
		}
		c.JSON(http.StatusOK, models.SuccessResponse(events, ""))
	}
}
