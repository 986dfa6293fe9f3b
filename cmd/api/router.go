package api

import (
	coachDelivery "habitflow-backend/internal/coach/delivery"
	pushDelivery "habitflow-backend/internal/push/delivery"
	"habitflow-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, pushHandler *pushDelivery.PushHandler, coachHandler *coachDelivery.CoachHandler, cfg *config.Config) {
	// Health check (no auth required)
	r.GET("/health", pushHandler.Health)

	senderAuth := pushDelivery.SenderAuthMiddleware(cfg.SendAPISecret)

	api := r.Group("/api")
	{
		// Subscription routes (public)
		api.POST("/subscribe", pushHandler.Subscribe)
		api.POST("/unsubscribe", pushHandler.Unsubscribe)
		api.GET("/subscriptions", pushHandler.ListSubscriptions)
		api.GET("/vapid-public-key", pushHandler.GetVAPIDPublicKey)

		// Delivery routes (protected when SEND_API_SECRET is set)
		send := api.Group("/send")
		send.Use(senderAuth)
		{
			send.POST("", pushHandler.Send)
			send.POST("/coach", coachHandler.SendCoach)
		}

		// Settings routes (public) - Runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ai", GetAISettings)
			settings.PUT("/ai", UpdateAISettings)
			settings.POST("/ai/test", TestOllamaConnection)
		}
	}
}
