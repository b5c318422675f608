// File: handlers/bundle.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Notification endpoints
	ListNotificationsHandler  gin.HandlerFunc
	UnreadCountHandler        gin.HandlerFunc
	MarkReadHandler           gin.HandlerFunc
	MarkAllReadHandler        gin.HandlerFunc
	DeleteNotificationHandler gin.HandlerFunc
	GetPreferencesHandler     gin.HandlerFunc
	UpdatePreferencesHandler  gin.HandlerFunc

	// Push device endpoints
	RegisterPushTokenHandler gin.HandlerFunc
	RemovePushTokenHandler   gin.HandlerFunc

	// Alert rule endpoints
	CreateAlertRuleHandler gin.HandlerFunc
	ListAlertRulesHandler  gin.HandlerFunc
	UpdateAlertRuleHandler gin.HandlerFunc
	ToggleAlertRuleHandler gin.HandlerFunc
	DeleteAlertRuleHandler gin.HandlerFunc

	// Webhook endpoints
	CreateWebhookHandler gin.HandlerFunc
	ListWebhooksHandler  gin.HandlerFunc
	UpdateWebhookHandler gin.HandlerFunc
	DeleteWebhookHandler gin.HandlerFunc
	TestWebhookHandler   gin.HandlerFunc

	// Event ingestion
	EmitEventHandler gin.HandlerFunc

	// Realtime
	WebSocketHandler gin.HandlerFunc
}

// requestUserID pulls the authenticated user id set by the auth
// middleware out of the gin context.
func requestUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authenticated user"})
		return "", false
	}
	userID, ok := value.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authenticated user"})
		return "", false
	}
	return userID, true
}
