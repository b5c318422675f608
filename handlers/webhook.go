// File: handlers/webhook.go
package handlers

import (
	"net/http"

	"flowdesk/services/webhook"
	"flowdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	Service webhook.WebhookService
}

func NewWebhookHandler(svc webhook.WebhookService) *WebhookHandler {
	return &WebhookHandler{Service: svc}
}

// CreateWebhookHandler handles POST /webhooks. The response carries the
// signing secret; it is shown this one time only.
func (h *WebhookHandler) CreateWebhookHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var in webhook.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		logger.Error("Invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, secret, err := h.Service.Create(c.Request.Context(), userID, in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"webhook": sub, "secret": secret})
}

// ListWebhooksHandler handles GET /webhooks.
func (h *WebhookHandler) ListWebhooksHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	subs, err := h.Service.List(c.Request.Context(), userID)
	if err != nil {
		utils.GetLogger().Error("Failed to list webhooks",
			zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list webhooks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": subs})
}

// UpdateWebhookHandler handles PUT /webhooks/:id.
func (h *WebhookHandler) UpdateWebhookHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var in webhook.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.Service.Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// DeleteWebhookHandler handles DELETE /webhooks/:id.
func (h *WebhookHandler) DeleteWebhookHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Webhook deleted"})
}

// TestWebhookHandler handles POST /webhooks/:id/test.
func (h *WebhookHandler) TestWebhookHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	delivered, err := h.Service.Test(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}
