// File: handlers/alert.go
package handlers

import (
	"net/http"

	"flowdesk/models"
	"flowdesk/services/alert"
	"flowdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AlertHandler struct {
	Service alert.AlertService
}

func NewAlertHandler(svc alert.AlertService) *AlertHandler {
	return &AlertHandler{Service: svc}
}

// CreateAlertRuleHandler handles POST /alerts.
func (h *AlertHandler) CreateAlertRuleHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var rule models.AlertRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		logger.Error("Invalid alert rule payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rule.UserID = userID

	created, err := h.Service.CreateRule(c.Request.Context(), &rule)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListAlertRulesHandler handles GET /alerts.
func (h *AlertHandler) ListAlertRulesHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	rules, err := h.Service.ListRules(c.Request.Context(), userID)
	if err != nil {
		utils.GetLogger().Error("Failed to list alert rules",
			zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list alert rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// UpdateAlertRuleHandler handles PUT /alerts/:id.
func (h *AlertHandler) UpdateAlertRuleHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var rule models.AlertRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rule.ID = c.Param("id")
	rule.UserID = userID

	updated, err := h.Service.UpdateRule(c.Request.Context(), &rule)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ToggleAlertRuleHandler handles PUT /alerts/:id/toggle.
func (h *AlertHandler) ToggleAlertRuleHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.ToggleRule(c.Request.Context(), userID, c.Param("id"), *req.Enabled); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert rule updated"})
}

// DeleteAlertRuleHandler handles DELETE /alerts/:id.
func (h *AlertHandler) DeleteAlertRuleHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteRule(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert rule deleted"})
}
