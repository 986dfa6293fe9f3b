package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"habitflow-backend/internal/push/domain"
	"habitflow-backend/internal/push/usecase"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Service turns Pub/Sub messages carrying a notification payload into deliveries
type Service struct {
	pubsubClient *pubsub.Client
	delivery     usecase.DeliveryUsecase
	projectID    string
	topicName    string
	subName      string
}

func NewService(projectID, topicName, subName string, delivery usecase.DeliveryUsecase, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	if subName == "" {
		subName = topicName + "-sub" // Convention: topic-sub
	}

	return &Service{
		pubsubClient: client,
		delivery:     delivery,
		projectID:    projectID,
		topicName:    topicName,
		subName:      subName,
	}, nil
}

// Start blocks receiving messages until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification ingress with subscription: %s", s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		if s.topicName == "" {
			log.Printf("[PubSub] Subscription %s does not exist and no topic configured", s.subName)
			return
		}

		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 60 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		handleMessage(ctx, s.delivery, msg.ID, msg.Data)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

// Close releases the Pub/Sub client
func (s *Service) Close() error {
	return s.pubsubClient.Close()
}

// handleMessage never asks for redelivery. Invalid payloads are logged and dropped.
func handleMessage(ctx context.Context, delivery usecase.DeliveryUsecase, id string, data []byte) *domain.DeliveryResult {
	var payload domain.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("[PubSub] Dropping message %s: invalid JSON: %v", id, err)
		return nil
	}

	result, err := delivery.Deliver(ctx, payload)
	if err != nil {
		log.Printf("[PubSub] Dropping message %s: %v", id, err)
		return nil
	}

	log.Printf("[PubSub] Message %s delivered: %d sent, %d failed, %d pruned",
		id, result.Stats.Sent, result.Stats.Failed, len(result.Pruned()))
	return result
}
