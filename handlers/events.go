// File: handlers/events.go
package handlers

import (
	"net/http"

	"flowdesk/models"
	"flowdesk/services/events"

	"github.com/gin-gonic/gin"
)

// EventHandler ingests business events from the other services of the
// platform and feeds them into the notification fabric.
type EventHandler struct {
	Bus *events.Bus
}

func NewEventHandler(bus *events.Bus) *EventHandler {
	return &EventHandler{Bus: bus}
}

var knownModules = map[models.BusinessModule]bool{
	models.ModuleCampaigns: true,
	models.ModuleDeals:     true,
	models.ModuleTickets:   true,
	models.ModulePosts:     true,
	models.ModuleCourses:   true,
	models.ModuleBilling:   true,
}

// EmitEventHandler handles POST /events. The snapshot is the current
// state of the business object the event concerns; alert rules resolve
// their condition fields against it.
func (h *EventHandler) EmitEventHandler(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req struct {
		Module   models.BusinessModule `json:"module" binding:"required"`
		Event    string                `json:"event" binding:"required"`
		Snapshot map[string]any        `json:"snapshot"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !knownModules[req.Module] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown module: " + string(req.Module)})
		return
	}

	h.Bus.Emit(c.Request.Context(), userID, req.Module, req.Event, req.Snapshot)
	c.JSON(http.StatusAccepted, gin.H{"message": "Event accepted"})
}
