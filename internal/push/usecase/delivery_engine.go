package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"habitflow-backend/internal/push/domain"
	"habitflow-backend/internal/push/repository"
	"habitflow-backend/pkg/webpush"
)

const logPrefixLen = 50

// DeliveryEngine sends payloads to every stored subscription concurrently.
// Each endpoint is its own failure domain; endpoints reported gone are removed
// from the store as soon as their outcome is known.
type DeliveryEngine struct {
	repo           repository.SubscriptionRepository
	sender         Sender
	maxConcurrency int
}

// NewDeliveryEngine creates a delivery engine. maxConcurrency bounds in-flight sends.
func NewDeliveryEngine(repo repository.SubscriptionRepository, sender Sender, maxConcurrency int) *DeliveryEngine {
	if maxConcurrency <= 0 {
		maxConcurrency = 32
	}
	return &DeliveryEngine{
		repo:           repo,
		sender:         sender,
		maxConcurrency: maxConcurrency,
	}
}

func (e *DeliveryEngine) Deliver(ctx context.Context, payload domain.Payload) (*domain.DeliveryResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	subs, err := e.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}
	if len(subs) == 0 {
		log.Println("[Push] No subscriptions registered, nothing to send")
		return &domain.DeliveryResult{}, nil
	}

	message, err := json.Marshal(payload.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	log.Printf("[Push] Sending notification to %d device(s): %q", len(subs), payload.Title)

	outcomes := make([]domain.DeliveryOutcome, len(subs))
	sem := make(chan struct{}, e.maxConcurrency)
	var wg sync.WaitGroup

	for i := range subs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = e.deliverOne(ctx, subs[i], message)
		}(i)
	}
	wg.Wait()

	result := &domain.DeliveryResult{Outcomes: outcomes}
	result.Stats.Attempted = len(outcomes)
	for _, o := range outcomes {
		if o.Success {
			result.Stats.Sent++
		} else {
			result.Stats.Failed++
		}
	}

	total, err := e.repo.Count(ctx)
	if err != nil {
		log.Printf("[Push] Failed to count subscriptions after delivery: %v", err)
		total = len(subs) - len(result.Pruned())
	}
	result.Stats.Total = total

	log.Printf("[Push] Delivery finished: %d sent, %d failed, %d pruned", result.Stats.Sent, result.Stats.Failed, len(result.Pruned()))
	return result, nil
}

// deliverOne sends to a single endpoint. It never panics into the caller.
func (e *DeliveryEngine) deliverOne(ctx context.Context, sub domain.Subscription, message []byte) (outcome domain.DeliveryOutcome) {
	outcome.Endpoint = sub.Endpoint
	prefix := domain.EndpointPrefix(sub.Endpoint, logPrefixLen)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Push] Panic while sending to %s: %v", prefix, r)
			outcome = domain.DeliveryOutcome{
				Endpoint: sub.Endpoint,
				Error:    fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	err := e.sender.Send(ctx, webpush.Subscription{
		Endpoint: sub.Endpoint,
		P256dh:   sub.Keys.P256dh,
		Auth:     sub.Keys.Auth,
	}, message)
	if err == nil {
		outcome.Success = true
		return outcome
	}

	outcome.Error = err.Error()
	if !errors.Is(err, webpush.ErrEndpointGone) {
		log.Printf("[Push] Failed to send to %s: %v", prefix, err)
		return outcome
	}

	removed, rmErr := e.repo.Remove(ctx, sub.Endpoint)
	if rmErr != nil {
		log.Printf("[Push] Endpoint gone but removal failed for %s: %v", prefix, rmErr)
		return outcome
	}
	outcome.Gone = true
	if removed {
		log.Printf("[Push] Expired subscription removed: %s", prefix)
	}
	return outcome
}
