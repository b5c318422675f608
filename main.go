// File: flowdesk/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowdesk/config"
	"flowdesk/database"
	alertRepoPkg "flowdesk/database/repository/alertrule"
	notificationRepoPkg "flowdesk/database/repository/notification"
	userRepoPkg "flowdesk/database/repository/user"
	webhookRepoPkg "flowdesk/database/repository/webhook"
	"flowdesk/handlers"
	"flowdesk/queue"
	"flowdesk/routes"
	"flowdesk/services/alert"
	"flowdesk/services/events"
	"flowdesk/services/notification"
	"flowdesk/services/realtime"
	"flowdesk/services/webhook"
	"flowdesk/utils"
	"flowdesk/workers"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	queueAdapter := queue.NewAdapter()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.GetDatabase().Client(), queueAdapter.Available)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()
	alertRepo := alertRepoPkg.NewMongoAlertRuleRepo()
	webhookRepo := webhookRepoPkg.NewMongoWebhookRepo()

	// realtime hub.
	hub := realtime.NewHub()
	go hub.Heartbeat(30 * time.Second)

	// services.
	notificationService, err := notification.NewDefaultNotificationService(notificationRepo, userRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}
	notificationService.Realtime = hub
	notificationService.Queue = queueAdapter

	if utils.FCMClient != nil {
		pushSender, perr := notification.NewFCMPushSender(utils.FCMClient)
		if perr != nil {
			logger.Sugar().Fatalf("main: failed to initialize push sender: %v", perr)
		}
		notificationService.Push = pushSender
	}

	mailer, err := utils.NewSMTPMailer()
	if err != nil {
		logger.Sugar().Warnf("main: email channel disabled: %v", err)
	} else {
		notificationService.Mailer = mailer
	}

	if messenger := notification.NewWhatsAppMessenger(); messenger != nil {
		notificationService.Messenger = messenger
	}

	webhookService, err := webhook.NewDefaultWebhookService(webhookRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize webhook service: %v", err)
	}

	alertService, err := alert.NewDefaultAlertService(alertRepo, notificationService)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize alert service: %v", err)
	}

	eventBus := events.NewBus(webhookService, alertService)

	// queue consumers.
	worker := workers.NewWorker(notificationService, webhookService, mailer)
	worker.Start()

	// handlers.
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	deviceHandler := handlers.NewDeviceHandler(notificationService)
	alertHandler := handlers.NewAlertHandler(alertService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	eventHandler := handlers.NewEventHandler(eventBus)
	wsHandler := handlers.NewWSHandler(hub)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Notification endpoints.
		ListNotificationsHandler:  notificationHandler.ListNotificationsHandler,
		UnreadCountHandler:        notificationHandler.UnreadCountHandler,
		MarkReadHandler:           notificationHandler.MarkReadHandler,
		MarkAllReadHandler:        notificationHandler.MarkAllReadHandler,
		DeleteNotificationHandler: notificationHandler.DeleteNotificationHandler,
		GetPreferencesHandler:     notificationHandler.GetPreferencesHandler,
		UpdatePreferencesHandler:  notificationHandler.UpdatePreferencesHandler,

		// Push device endpoints.
		RegisterPushTokenHandler: deviceHandler.RegisterPushTokenHandler,
		RemovePushTokenHandler:   deviceHandler.RemovePushTokenHandler,

		// Alert rule endpoints.
		CreateAlertRuleHandler: alertHandler.CreateAlertRuleHandler,
		ListAlertRulesHandler:  alertHandler.ListAlertRulesHandler,
		UpdateAlertRuleHandler: alertHandler.UpdateAlertRuleHandler,
		ToggleAlertRuleHandler: alertHandler.ToggleAlertRuleHandler,
		DeleteAlertRuleHandler: alertHandler.DeleteAlertRuleHandler,

		// Webhook endpoints.
		CreateWebhookHandler: webhookHandler.CreateWebhookHandler,
		ListWebhooksHandler:  webhookHandler.ListWebhooksHandler,
		UpdateWebhookHandler: webhookHandler.UpdateWebhookHandler,
		DeleteWebhookHandler: webhookHandler.DeleteWebhookHandler,
		TestWebhookHandler:   webhookHandler.TestWebhookHandler,

		// Event ingestion.
		EmitEventHandler: eventHandler.EmitEventHandler,

		// Realtime.
		WebSocketHandler: wsHandler.WebSocketHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.SetupRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	worker.Shutdown()
	if err := queueAdapter.Close(); err != nil {
		logger.Sugar().Warnf("main: failed to close queue adapter: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
