package dto

import "habitflow-backend/internal/push/domain"

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

type SubscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Total   int    `json:"total"`
}

type UnsubscribeResponse struct {
	Success bool `json:"success"`
	Deleted bool `json:"deleted"`
	Total   int  `json:"total"`
}

type SendResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Stats   domain.DeliveryStats `json:"stats"`
}

type SubscriptionsResponse struct {
	Count     int                          `json:"count"`
	Endpoints []domain.RegistrationSummary `json:"endpoints"`
}

type PublicKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
