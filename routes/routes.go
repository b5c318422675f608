package routes

import (
	"time"

	"flowdesk/handlers"
	"flowdesk/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes registers the notification history and
// preference endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.ListNotificationsHandler)
		api.GET("/unread-count", hb.UnreadCountHandler)
		api.PUT("/read-all", hb.MarkAllReadHandler)
		api.PUT("/read/:id", hb.MarkReadHandler)
		api.DELETE("/:id", hb.DeleteNotificationHandler)
		api.GET("/preferences", hb.GetPreferencesHandler)
		api.PUT("/preferences", hb.UpdatePreferencesHandler)
	}
}

// RegisterDeviceRoutes registers push token management.
func RegisterDeviceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/devices")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/push-token", hb.RegisterPushTokenHandler)
		api.DELETE("/push-token", hb.RemovePushTokenHandler)
	}
}

// RegisterAlertRoutes registers alert rule management.
func RegisterAlertRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/alerts")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.CreateAlertRuleHandler)
		api.GET("", hb.ListAlertRulesHandler)
		api.PUT("/:id", hb.UpdateAlertRuleHandler)
		api.PUT("/:id/toggle", hb.ToggleAlertRuleHandler)
		api.DELETE("/:id", hb.DeleteAlertRuleHandler)
	}
}

// RegisterWebhookRoutes registers webhook subscription management.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/webhooks")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.CreateWebhookHandler)
		api.GET("", hb.ListWebhooksHandler)
		api.PUT("/:id", hb.UpdateWebhookHandler)
		api.DELETE("/:id", hb.DeleteWebhookHandler)
		api.POST("/:id/test", hb.TestWebhookHandler)
	}
}

// RegisterEventRoutes registers the business event ingestion endpoint.
func RegisterEventRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/events")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.EmitEventHandler)
	}
}

// RegisterRealtimeRoute registers the websocket endpoint. The token is
// carried in the query string or Authorization header; the handler does
// its own validation before upgrading.
func RegisterRealtimeRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/ws", hb.WebSocketHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// SetupRoutes wires the global middleware and every route group.
func SetupRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterRealtimeRoute(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
	RegisterAlertRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterEventRoutes(r, hb)
}
