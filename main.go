package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	api "habitflow-backend/cmd/api"
	"habitflow-backend/internal/notification"
	pushRepo "habitflow-backend/internal/push/repository"
	pushUsecase "habitflow-backend/internal/push/usecase"
	"habitflow-backend/pkg/config"
	"habitflow-backend/pkg/database"
	"habitflow-backend/pkg/vapid"
	"habitflow-backend/pkg/webpush"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize subscription store
	var subscriptionRepo pushRepo.SubscriptionRepository
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		subscriptionRepo = pushRepo.NewGormSubscriptionRepository(db)
	default:
		subscriptionRepo = pushRepo.NewFileSubscriptionRepository(cfg.DataFile)
	}
	if err := subscriptionRepo.Load(ctx); err != nil {
		log.Fatal("Failed to load subscriptions:", err)
	}

	// Resolve the VAPID signing identity (env, key file, or generated once)
	keys, err := vapid.Resolve(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDKeysFile)
	if err != nil {
		log.Fatal("Failed to resolve VAPID keys:", err)
	}

	pushClient, err := webpush.NewClient(webpush.Options{
		PublicKey:  keys.PublicKey,
		PrivateKey: keys.PrivateKey,
		Subscriber: cfg.VAPIDEmail,
		TTL:        cfg.PushTTL,
		Timeout:    cfg.PushTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize web push client:", err)
	}

	// Initialize use cases (dependency injection)
	deliveryEngine := pushUsecase.NewDeliveryEngine(subscriptionRepo, pushClient, cfg.PushMaxConcurrency)
	registration := pushUsecase.NewRegistrationUsecase(subscriptionRepo, keys.PublicKey)

	// Initialize Notification Service (Pub/Sub)
	// Only start if project ID is configured
	if cfg.GoogleProjectID != "" {
		// Extract short names from full resource names if necessary
		topicName := shortResourceName(cfg.GooglePubSubTopic)
		subName := shortResourceName(cfg.GooglePubSubSubscription)

		notifService, err := notification.NewService(cfg.GoogleProjectID, topicName, subName, deliveryEngine, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize notification service: %v", err)
		} else {
			defer notifService.Close()
			go notifService.Start(ctx)
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, Pub/Sub ingress disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, registration, deliveryEngine)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("VAPID public key: %s", keys.PublicKey)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func shortResourceName(name string) string {
	if parts := strings.Split(name, "/"); len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return name
}
