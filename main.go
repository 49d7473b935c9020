package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/directory"
	"messaging-service/internal/events"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/session"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, directory cache disabled: %v", err)
			rdb = nil
		}
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	emitter := events.NewEmitter(publisher, serviceName, cfg.Environment)

	convRepo := repositories.NewConversationRepo(database)
	msgRepo := repositories.NewMessageRepo(database)
	readRepo := repositories.NewReadStateRepo(database)
	profileRepo := repositories.NewProfileRepo(database)
	notifRepo := repositories.NewNotificationRepo(database)

	dir := directory.New(profileRepo, rdb)
	hub := ws.NewHub()

	sessions := session.NewManager(convRepo, msgRepo, readRepo, dir, cfg.RefreshInterval,
		session.WithCallTimeout(cfg.CallTimeout),
		session.WithEventSink(emitter),
		session.WithNotifier(hub.PushSnapshot),
	)
	defer sessions.Close()

	conversationHandler := handlers.NewConversationHandler(sessions, convRepo)
	messageHandler := handlers.NewMessageHandler(sessions, convRepo, msgRepo)
	profileHandler := handlers.NewProfileHandler(sessions)
	notificationHandler := handlers.NewNotificationHandler(notifRepo)
	sessionWS := ws.NewSessionWebSocketHandler(hub, convRepo, dir, cfg.JWTSecret)

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	router.GET("/conversations", authMiddleware, conversationHandler.List)
	router.POST("/conversations/start", authMiddleware, conversationHandler.Start)
	router.POST("/conversations/:conversation_id/read", authMiddleware, conversationHandler.MarkRead)
	router.POST("/conversations/:conversation_id/archive", authMiddleware, conversationHandler.Archive)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, messageHandler.List)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, messageHandler.Post)
	router.POST("/conversations/:conversation_id/messages/:message_id/reactions", authMiddleware, messageHandler.AddReaction)
	router.DELETE("/conversations/:conversation_id/messages/:message_id/reactions/:emoji", authMiddleware, messageHandler.RemoveReaction)

	router.GET("/users/search", authMiddleware, profileHandler.Search)

	router.GET("/notifications", authMiddleware, notificationHandler.List)
	router.POST("/notifications/:notification_id/read", authMiddleware, notificationHandler.MarkRead)
	router.POST("/notifications/read-all", authMiddleware, notificationHandler.MarkAllRead)

	router.GET("/ws", sessionWS.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
