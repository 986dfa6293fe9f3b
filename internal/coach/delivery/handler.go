package delivery

import (
	"errors"
	"log"
	"net/http"

	"habitflow-backend/internal/coach/domain"
	"habitflow-backend/internal/coach/dto"
	"habitflow-backend/internal/coach/usecase"
	pushdomain "habitflow-backend/internal/push/domain"
	pushdelivery "habitflow-backend/internal/push/delivery"
	pushdto "habitflow-backend/internal/push/dto"

	"github.com/gin-gonic/gin"
)

type CoachHandler struct {
	coach usecase.CoachUsecase
}

func NewCoachHandler(coach usecase.CoachUsecase) *CoachHandler {
	return &CoachHandler{coach: coach}
}

// SendCoach generates a nudge for the pending habits and delivers it
// POST /api/send/coach
func (h *CoachHandler) SendCoach(c *gin.Context) {
	var req domain.CoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pushdto.ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.coach.Nudge(c.Request.Context(), req)
	switch {
	case err == nil:
	case pushdomain.IsValidation(err):
		c.JSON(http.StatusBadRequest, pushdto.ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrNoGenerator):
		c.JSON(http.StatusServiceUnavailable, pushdto.ErrorResponse{Error: err.Error()})
		return
	default:
		log.Printf("[Coach] Nudge failed: %v", err)
		c.JSON(http.StatusBadGateway, pushdto.ErrorResponse{Error: "failed to generate notification"})
		return
	}

	if result.Skipped {
		c.JSON(http.StatusOK, dto.CoachResponse{
			Success: true,
			Skipped: true,
			Message: "Nothing to send",
		})
		return
	}

	sent := pushdelivery.SendResponseFor(result.Delivery)
	c.JSON(http.StatusOK, dto.CoachResponse{
		Success: true,
		Message: sent.Message,
		Text:    result.Text,
		Stats:   &sent.Stats,
	})
}
