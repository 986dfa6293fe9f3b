package dto

import pushdomain "habitflow-backend/internal/push/domain"

type CoachResponse struct {
	Success bool                      `json:"success"`
	Skipped bool                      `json:"skipped,omitempty"`
	Message string                    `json:"message,omitempty"`
	Text    string                    `json:"text,omitempty"`
	Stats   *pushdomain.DeliveryStats `json:"stats,omitempty"`
}
