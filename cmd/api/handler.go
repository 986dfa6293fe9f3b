package api

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	coachDelivery "habitflow-backend/internal/coach/delivery"
	coachUsecase "habitflow-backend/internal/coach/usecase"
	pushDelivery "habitflow-backend/internal/push/delivery"
	pushUsecase "habitflow-backend/internal/push/usecase"
	"habitflow-backend/pkg/ai"
	"habitflow-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type Handler struct {
	config       *config.Config
	pushHandler  *pushDelivery.PushHandler
	coachHandler *coachDelivery.CoachHandler
}

func NewHandler(cfg *config.Config, registration pushUsecase.RegistrationUsecase, delivery pushUsecase.DeliveryUsecase) *Handler {
	// Initialize runtime config for settings API
	InitRuntimeConfig(cfg.AIProvider, cfg.OllamaBaseURL, cfg.OllamaModel)

	// Initialize AI service with dynamic config getters for runtime updates
	generator, err := ai.NewTextGenerator(ai.Config{
		Provider:         ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:     cfg.GeminiApiKey,
		GetOllamaBaseURL: GetRuntimeOllamaBaseURL,
		GetOllamaModel:   GetRuntimeOllamaModel,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v. Coaching notifications disabled.", err)
	} else {
		log.Printf("AI service initialized with provider: %s (dynamic config enabled)", cfg.AIProvider)
	}

	return &Handler{
		config:       cfg,
		pushHandler:  pushDelivery.NewPushHandler(registration, delivery),
		coachHandler: coachDelivery.NewCoachHandler(coachUsecase.NewCoachUsecase(generator, delivery)),
	}
}

// Router builds the gin engine with middleware, routes and the SPA fallback
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()

	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware(h.config.AllowedOrigins()))

	SetupRoutes(r, h.pushHandler, h.coachHandler, h.config)

	r.NoRoute(spaHandler(h.config.FrontendPath))

	return r
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	return h.Router().Run(addr)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// corsMiddleware only echoes origins from the allow-list
func corsMiddleware(allowed []string) gin.HandlerFunc {
	allow := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allow[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && allow[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			c.Writer.Header().Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// spaHandler serves the frontend bundle and falls back to index.html for
// client-side routes. Unmatched /api/ paths get a JSON 404.
func spaHandler(root string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		file := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}

		index := filepath.Join(root, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "frontend not built"})
			return
		}
		c.File(index)
	}
}
