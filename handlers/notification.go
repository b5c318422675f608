// File: handlers/notification.go
package handlers

import (
	"net/http"
	"strconv"

	"flowdesk/models"
	"flowdesk/services/notification"
	"flowdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

// ListNotificationsHandler handles GET /notifications. Supports
// ?unread=true to restrict to unread rows and ?limit=N to cap the page.
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true"
	var limit int64 = 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	items, err := h.Service.List(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		logger.Error("Failed to list notifications", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// UnreadCountHandler handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCountHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	count, err := h.Service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		utils.GetLogger().Error("Failed to count unread notifications",
			zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count unread notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkReadHandler handles PUT /notifications/read/:id.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Service.MarkRead(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllReadHandler handles PUT /notifications/read-all.
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	modified, err := h.Service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		utils.GetLogger().Error("Failed to mark notifications read",
			zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"modified": modified})
}

// DeleteNotificationHandler handles DELETE /notifications/:id.
func (h *NotificationHandler) DeleteNotificationHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Service.Delete(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// GetPreferencesHandler handles GET /notifications/preferences.
func (h *NotificationHandler) GetPreferencesHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	prefs, err := h.Service.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferencesHandler handles PUT /notifications/preferences.
func (h *NotificationHandler) UpdatePreferencesHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var prefs models.NotificationPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		logger.Error("Invalid preferences payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.UpdatePreferences(c.Request.Context(), userID, &prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preferences updated"})
}
