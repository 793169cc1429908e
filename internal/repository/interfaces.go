package repository

import (
	"context"

	"github.com/Zeethx/NebulaView/internal/domain"
)

// UserRepository is the credential store: it owns persisted user records and
// every password write path. Create and SetPassword take plaintext and hash
// internally, so a stored hash is rewritten exactly when a password value is
// set and never when other fields change.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User, password string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	SetPassword(ctx context.Context, userID, password string) error
	UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, userID, coverImageURL string) (*domain.User, error)
}

// SubscriptionRepository backs the channel profile aggregation and the
// subscribe/unsubscribe mutations.
type SubscriptionRepository interface {
	GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	Subscribe(ctx context.Context, subscriberID, channelID string) error
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
}
