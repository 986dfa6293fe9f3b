package delivery

import (
	"fmt"
	"log"
	"net/http"

	"habitflow-backend/internal/push/domain"
	"habitflow-backend/internal/push/dto"
	"habitflow-backend/internal/push/usecase"

	"github.com/gin-gonic/gin"
)

// PushHandler handles push subscription and delivery HTTP requests
type PushHandler struct {
	registration usecase.RegistrationUsecase
	delivery     usecase.DeliveryUsecase
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(registration usecase.RegistrationUsecase, delivery usecase.DeliveryUsecase) *PushHandler {
	return &PushHandler{
		registration: registration,
		delivery:     delivery,
	}
}

// Subscribe registers a push subscription
// POST /api/subscribe
func (h *PushHandler) Subscribe(c *gin.Context) {
	var sub domain.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid subscription: required fields are endpoint, keys.p256dh, keys.auth"})
		return
	}

	total, err := h.registration.Subscribe(c.Request.Context(), &sub)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubscribeResponse{
		Success: true,
		Message: "Subscription registered",
		Total:   total,
	})
}

// Unsubscribe removes a push subscription
// POST /api/unsubscribe
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "endpoint not provided"})
		return
	}

	deleted, total, err := h.registration.Unsubscribe(c.Request.Context(), req.Endpoint)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UnsubscribeResponse{
		Success: true,
		Deleted: deleted,
		Total:   total,
	})
}

// Send delivers a notification to every registered subscription
// POST /api/send
func (h *PushHandler) Send(c *gin.Context) {
	var payload domain.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: `payload must contain at least "title" and "body"`})
		return
	}

	result, err := h.delivery.Deliver(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SendResponseFor(result))
}

// ListSubscriptions returns redacted subscription info for debugging
// GET /api/subscriptions
func (h *PushHandler) ListSubscriptions(c *gin.Context) {
	summaries, err := h.registration.ListRegistrations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubscriptionsResponse{
		Count:     len(summaries),
		Endpoints: summaries,
	})
}

// GetVAPIDPublicKey returns the public key clients subscribe with
// GET /api/vapid-public-key
func (h *PushHandler) GetVAPIDPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, dto.PublicKeyResponse{PublicKey: h.registration.SigningPublicKey()})
}

// Health is the liveness probe
// GET /health
func (h *PushHandler) Health(c *gin.Context) {
	status, err := h.registration.Health(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SendResponseFor builds the /api/send body from a delivery result
func SendResponseFor(result *domain.DeliveryResult) dto.SendResponse {
	message := "No subscriptions registered"
	if result.Stats.Attempted > 0 {
		message = fmt.Sprintf("Notification sent to %d of %d device(s)", result.Stats.Sent, result.Stats.Attempted)
	}
	return dto.SendResponse{
		Success: true,
		Message: message,
		Stats:   result.Stats,
	}
}

// respondError maps validation failures to 400 and everything else to 500
func respondError(c *gin.Context, err error) {
	if domain.IsValidation(err) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	log.Printf("[Push] Request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}
