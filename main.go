package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Godevs04/TeamTaatom-sub013/internal/authclient"
	"github.com/Godevs04/TeamTaatom-sub013/internal/db"
	"github.com/Godevs04/TeamTaatom-sub013/internal/delivery"
	"github.com/Godevs04/TeamTaatom-sub013/internal/handlers"
	"github.com/Godevs04/TeamTaatom-sub013/internal/middleware"
	"github.com/Godevs04/TeamTaatom-sub013/internal/notify"
	"github.com/Godevs04/TeamTaatom-sub013/internal/observability"
	"github.com/Godevs04/TeamTaatom-sub013/internal/rabbitmq"
	"github.com/Godevs04/TeamTaatom-sub013/internal/repositories"
	"github.com/Godevs04/TeamTaatom-sub013/internal/telemetry"
	"github.com/Godevs04/TeamTaatom-sub013/internal/ws"
)

const serviceName = "taatom-chat"

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), serviceName, getEnv("OTLP_ENDPOINT", ""))
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	eventPublisher, err := observability.NewAMQPPublisher(getEnv("AMQP_URL", ""), getEnv("EVENTS_EXCHANGE", "taatom.events"))
	if err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AUDIT_EXCHANGE", "taatom.audit"))
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s reason=%q", rabbitmq.PublisherMode(auditPublisher), rabbitmq.PublisherNoopReason(auditPublisher))
	emitter := telemetry.NewAuditEmitter(auditPublisher, "audit_log.chat", serviceName, getEnv("ENVIRONMENT", "development"))

	dispatcher := notify.NewDispatcher(getEnv("REDIS_URL", ""))
	defer dispatcher.Close()
	log.Printf("notification dispatcher mode=%s", notify.DispatcherMode(dispatcher))

	authClient := authclient.New(getEnv("AUTH_BASE_URL", "http://localhost:8084"))

	convRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	readRepo := repositories.NewReadStateRepo(database)

	hub := ws.NewHub()
	coordinator := delivery.NewCoordinator(hub, readRepo, dispatcher)

	chatHandler := handlers.NewChatHandler(convRepo, messageRepo, readRepo, coordinator, emitter)
	sessionWS := ws.NewSessionHandler(hub, authClient)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(authClient)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.GET("/chats/:peer_id", authMiddleware, chatHandler.GetChat)
	router.GET("/chats/:peer_id/messages", authMiddleware, chatHandler.GetMessages)
	router.POST("/chats/:peer_id/messages", authMiddleware, chatHandler.PostMessage)
	router.POST("/chats/:peer_id/mark-all-seen", authMiddleware, chatHandler.MarkAllSeen)
	router.GET("/chats/:peer_id/mute-status", authMiddleware, chatHandler.GetMuteStatus)
	router.POST("/chats/:peer_id/mute", authMiddleware, chatHandler.ToggleMute)
	router.DELETE("/chats/:peer_id/messages", authMiddleware, chatHandler.ClearChat)

	router.GET("/ws", sessionWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, emitter, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
