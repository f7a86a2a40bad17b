package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Nanpapu/eventhub-sub001/internal/helpers"
	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/services"
	"github.com/gin-gonic/gin"
)

type createEventRequest struct {
	models.Event
	Publish bool `json:"publish"`
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		var req createEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}

		event, err := es.CreateEvent(c.Request.Context(), actor, &req.Event, req.Publish)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(event, "event created"))
	}
}

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := helpers.ParsePage(c.Query("page"), c.Query("limit"))
		upcoming, _ := strconv.ParseBool(c.DefaultQuery("upcoming", "false"))
		filter := models.EventFilter{
			Category: strings.TrimSpace(c.Query("category")),
			Search:   strings.TrimSpace(c.Query("search")),
			Upcoming: upcoming,
		}

		events, total, err := es.ListEvents(c.Request.Context(), filter, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		page, limit, _ = services.NormalizePage(page, limit)
		c.JSON(http.StatusOK, models.PaginatedResponse(events, page, limit, total))
	}
}

// GetEvent is public, so drafts are reported as missing.
func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		event, err := es.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if event.Status == models.EventStatusDraft {
			respondError(c, models.ErrEventNotFound)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var upd models.EventUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}

		event, err := es.UpdateEvent(c.Request.Context(), actor, id, upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "event updated"))
	}
}

func PublishEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		event, err := es.PublishEvent(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "event published"))
	}
}

func CancelEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var body struct {
			Reason string `json:"reason" binding:"max=500"`
		}
		// the reason is optional, so an empty body is fine
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				badRequest(c, "invalid request payload: "+err.Error())
				return
			}
		}

		event, err := es.CancelEvent(c.Request.Context(), actor, id, body.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "event cancelled"))
	}
}
