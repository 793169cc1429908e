package domain

import "time"

// User represents an account record. Username and email are stored lowercased
// and are the immutable lookup keys. RefreshToken holds the single currently
// valid refresh token for the account, or "" when no session is active.
type User struct {
	ID            string    `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	FullName      string    `json:"fullName" db:"full_name"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	AvatarURL     string    `json:"avatar" db:"avatar_url"`
	CoverImageURL string    `json:"coverImage,omitempty" db:"cover_image_url"`
	RefreshToken  string    `json:"-" db:"refresh_token"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// ChannelProfile is the read model for the public channel page: profile
// fields plus subscription counters for the viewer.
type ChannelProfile struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullName"`
	AvatarURL       string    `json:"avatar"`
	CoverImageURL   string    `json:"coverImage,omitempty"`
	SubscriberCount int64     `json:"subscribersCount"`
	SubscribedTo    int64     `json:"channelsSubscribedToCount"`
	IsSubscribed    bool      `json:"isSubscribed"`
	CreatedAt       time.Time `json:"createdAt"`
}
