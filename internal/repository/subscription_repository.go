package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Zeethx/NebulaView/internal/domain"
	"github.com/Zeethx/NebulaView/pkg/database"
	"github.com/lib/pq"
)

// subscriptionRepository implements SubscriptionRepository interface
type subscriptionRepository struct {
	db *database.Postgres
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *database.Postgres) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetChannelProfile aggregates the public channel page for a username.
// viewerID may be "" for anonymous viewers; then IsSubscribed is false.
func (r *subscriptionRepository) GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	query := `
		SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, u.cover_image_url, u.created_at,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id)    AS subscriber_count,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to_count,
		       EXISTS(
		           SELECT 1 FROM subscriptions s
		           WHERE s.channel_id = u.id AND s.subscriber_id::text = $2
		       ) AS is_subscribed
		FROM users u
		WHERE u.username = $1
	`

	profile := &domain.ChannelProfile{}
	err := r.db.DB.QueryRowContext(ctx, query, username, viewerID).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.CoverImageURL,
		&profile.CreatedAt,
		&profile.SubscriberCount,
		&profile.SubscribedTo,
		&profile.IsSubscribed,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("channel %s not found: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get channel profile: %w", err)
	}

	return profile, nil
}

// Subscribe records a subscription; already subscribed is not an error.
func (r *subscriptionRepository) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	query := `
		INSERT INTO subscriptions (subscriber_id, channel_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	`

	_, err := r.db.DB.ExecContext(ctx, query, subscriberID, channelID, time.Now())
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				return fmt.Errorf("channel %s not found: %w", channelID, ErrNotFound)
			}
		}
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	return nil
}

// Unsubscribe removes a subscription; idempotent.
func (r *subscriptionRepository) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	query := `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`

	if _, err := r.db.DB.ExecContext(ctx, query, subscriberID, channelID); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	return nil
}
