package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"

	"habitflow-backend/internal/push/domain"
	"habitflow-backend/pkg/atomicfile"
)

// fileSubscriptionRepository keeps subscriptions in memory and writes the whole
// index to a single JSON document on every mutation (write-through).
type fileSubscriptionRepository struct {
	path string

	// writeMu serializes mutations so two writers never persist torn snapshots
	writeMu sync.Mutex

	mu   sync.RWMutex
	subs map[string]domain.Subscription
}

// NewFileSubscriptionRepository creates a repository backed by the JSON file at path.
// Call Load before use.
func NewFileSubscriptionRepository(path string) SubscriptionRepository {
	return &fileSubscriptionRepository{
		path: path,
		subs: make(map[string]domain.Subscription),
	}
}

func (r *fileSubscriptionRepository) Load(ctx context.Context) error {
	subs := make(map[string]domain.Subscription)

	data, err := os.ReadFile(r.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("[Store] No subscriptions file at %s, starting empty", r.path)
	case err != nil:
		log.Printf("[Store] Failed to read subscriptions file %s, starting empty: %v", r.path, err)
	default:
		var records []domain.Subscription
		if err := json.Unmarshal(data, &records); err != nil {
			log.Printf("[Store] Failed to parse subscriptions file %s, starting empty: %v", r.path, err)
			break
		}
		for i := range records {
			if err := records[i].Validate(); err != nil {
				log.Printf("[Store] Skipping invalid record %d: %v", i, err)
				continue
			}
			subs[records[i].Endpoint] = records[i]
		}
		log.Printf("[Store] Loaded %d subscriptions from disk", len(subs))
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.Lock()
	r.subs = subs
	r.mu.Unlock()
	return nil
}

func (r *fileSubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	next := r.snapshot()
	next[sub.Endpoint] = *sub

	if err := r.persist(next); err != nil {
		return fmt.Errorf("failed to persist subscription: %w", err)
	}
	r.swap(next)
	return nil
}

func (r *fileSubscriptionRepository) Remove(ctx context.Context, endpoint string) (bool, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.RLock()
	_, ok := r.subs[endpoint]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}

	next := r.snapshot()
	delete(next, endpoint)

	if err := r.persist(next); err != nil {
		return false, fmt.Errorf("failed to persist removal: %w", err)
	}
	r.swap(next)
	return true, nil
}

func (r *fileSubscriptionRepository) All(ctx context.Context) ([]domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s)
	}
	return out, nil
}

func (r *fileSubscriptionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs), nil
}

// snapshot copies the current index. Callers hold writeMu.
func (r *fileSubscriptionRepository) snapshot() map[string]domain.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	next := make(map[string]domain.Subscription, len(r.subs)+1)
	for k, v := range r.subs {
		next[k] = v
	}
	return next
}

func (r *fileSubscriptionRepository) swap(next map[string]domain.Subscription) {
	r.mu.Lock()
	r.subs = next
	r.mu.Unlock()
}

// persist writes the full index. The file holds auth secrets, so it is private to the owner.
func (r *fileSubscriptionRepository) persist(subs map[string]domain.Subscription) error {
	records := make([]domain.Subscription, 0, len(subs))
	for _, s := range subs {
		records = append(records, s)
	}
	slices.SortFunc(records, func(a, b domain.Subscription) int {
		return strings.Compare(a.Endpoint, b.Endpoint)
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subscriptions: %w", err)
	}
	return atomicfile.WriteFile(r.path, data, 0o600)
}
