package handlers

import (
	"net/http"
	"strconv"

	"github.com/Nanpapu/eventhub-sub001/internal/helpers"
	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/services"
	"github.com/gin-gonic/gin"
)

func ListNotifications(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		page, limit := helpers.ParsePage(c.Query("page"), c.Query("limit"))
		page, limit, _ = services.NormalizePage(page, limit)
		unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

		res, err := ns.List(c.Request.Context(), userID, page, limit, unreadOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		if res.Items == nil {
			res.Items = []*models.Notification{}
		}
		c.JSON(http.StatusOK, models.InboxResponse(res, page, limit))
	}
}

func UnreadCount(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		n, err := ns.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"unreadCount": n}, ""))
	}
}

func MarkNotificationRead(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if err := ns.MarkRead(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "notification marked as read"))
	}
}

func MarkAllNotificationsRead(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		n, err := ns.MarkAllRead(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"updated": n}, "all notifications marked as read"))
	}
}

func DeleteNotification(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if err := ns.Delete(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "notification deleted"))
	}
}

func DeleteReadNotifications(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		n, err := ns.DeleteRead(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"deleted": n}, "read notifications deleted"))
	}
}
