package repository

import (
	"context"
	"fmt"
	"time"

	"habitflow-backend/internal/push/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRecord is the database row for a push subscription
type subscriptionRecord struct {
	ID             string     `gorm:"primaryKey;type:varchar(36)"`
	Endpoint       string     `gorm:"uniqueIndex;not null"`
	P256dh         string     `gorm:"column:p256dh;not null"`
	Auth           string     `gorm:"not null"`
	ExpirationTime *int64     `gorm:"column:expiration_time"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (subscriptionRecord) TableName() string {
	return "push_subscriptions"
}

func (s *subscriptionRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (s *subscriptionRecord) toDomain() domain.Subscription {
	return domain.Subscription{
		Endpoint:       s.Endpoint,
		ExpirationTime: s.ExpirationTime,
		Keys: domain.Keys{
			P256dh: s.P256dh,
			Auth:   s.Auth,
		},
	}
}

// gormSubscriptionRepository implements SubscriptionRepository on Postgres.
// Every call is its own statement, so there is no in-memory index to keep in sync.
type gormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a database-backed SubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &gormSubscriptionRepository{db: db}
}

func (r *gormSubscriptionRepository) Load(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&subscriptionRecord{}); err != nil {
		return fmt.Errorf("failed to migrate push_subscriptions: %w", err)
	}
	return nil
}

// Upsert is an atomic INSERT ... ON CONFLICT (endpoint) DO UPDATE
func (r *gormSubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	now := time.Now()
	record := &subscriptionRecord{
		Endpoint:       sub.Endpoint,
		P256dh:         sub.Keys.P256dh,
		Auth:           sub.Keys.Auth,
		ExpirationTime: sub.ExpirationTime,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "expiration_time", "updated_at"}),
	}).Create(record).Error
}

func (r *gormSubscriptionRepository) Remove(ctx context.Context, endpoint string) (bool, error) {
	result := r.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&subscriptionRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormSubscriptionRepository) All(ctx context.Context) ([]domain.Subscription, error) {
	var records []subscriptionRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}

	subs := make([]domain.Subscription, 0, len(records))
	for i := range records {
		subs = append(subs, records[i].toDomain())
	}
	return subs, nil
}

func (r *gormSubscriptionRepository) Count(ctx context.Context) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&subscriptionRecord{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}
