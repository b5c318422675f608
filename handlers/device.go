// File: handlers/device.go
package handlers

import (
	"net/http"

	"flowdesk/services/notification"
	"flowdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceHandler manages the user's push delivery token.
type DeviceHandler struct {
	Service notification.NotificationService
}

func NewDeviceHandler(svc notification.NotificationService) *DeviceHandler {
	return &DeviceHandler{Service: svc}
}

// RegisterPushTokenHandler handles POST /devices/push-token.
func (h *DeviceHandler) RegisterPushTokenHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.RegisterPushToken(c.Request.Context(), userID, req.Token); err != nil {
		utils.GetLogger().Error("Failed to register push token",
			zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register push token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token registered"})
}

// RemovePushTokenHandler handles DELETE /devices/push-token.
func (h *DeviceHandler) RemovePushTokenHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	if err := h.Service.RemovePushToken(c.Request.Context(), userID); err != nil {
		utils.GetLogger().Error("Failed to remove push token",
			zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove push token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token removed"})
}
