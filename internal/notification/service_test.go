package notification

import (
	"context"
	"testing"

	"habitflow-backend/internal/push/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDelivery struct {
	payloads []domain.Payload
}

func (r *recordingDelivery) Deliver(ctx context.Context, payload domain.Payload) (*domain.DeliveryResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	r.payloads = append(r.payloads, payload)
	return &domain.DeliveryResult{
		Stats: domain.DeliveryStats{Total: 1, Attempted: 2, Sent: 1, Failed: 1},
		Outcomes: []domain.DeliveryOutcome{
			{Endpoint: "https://push.example/a", Success: true},
			{Endpoint: "https://push.example/b", Error: "gone", Gone: true},
		},
	}, nil
}

func TestHandleMessage_Delivers(t *testing.T) {
	rec := &recordingDelivery{}

	result := handleMessage(context.Background(), rec, "m1", []byte(`{"title":"Hora do treino","body":"Bora!","url":"/habits"}`))

	require.NotNil(t, result)
	require.Len(t, rec.payloads, 1)
	assert.Equal(t, "Hora do treino", rec.payloads[0].Title)
	assert.Equal(t, "/habits", rec.payloads[0].URL)
	assert.Equal(t, []string{"https://push.example/b"}, result.Pruned())
}

func TestHandleMessage_DropsInvalidJSON(t *testing.T) {
	rec := &recordingDelivery{}

	result := handleMessage(context.Background(), rec, "m2", []byte(`{"title":`))

	assert.Nil(t, result)
	assert.Empty(t, rec.payloads)
}

func TestHandleMessage_DropsInvalidPayload(t *testing.T) {
	rec := &recordingDelivery{}

	result := handleMessage(context.Background(), rec, "m3", []byte(`{"title":"only title"}`))

	assert.Nil(t, result)
	assert.Empty(t, rec.payloads)
}
