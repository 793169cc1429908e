package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Zeethx/NebulaView/internal/domain"
	"github.com/Zeethx/NebulaView/internal/repository"
	"github.com/Zeethx/NebulaView/internal/service"
	"github.com/Zeethx/NebulaView/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo is an in-memory credential store. It mirrors the contract of
// the postgres repository, including hashing on every password write.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}

	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) SetRefreshToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) SetPassword(ctx context.Context, userID, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}

	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if email != "" {
		for id, other := range r.users {
			if id != userID && other.Email == email {
				return nil, repository.ErrDuplicateUser
			}
		}
		u.Email = email
	}
	if fullName != "" {
		u.FullName = fullName
	}
	u.UpdatedAt = time.Now()
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*domain.User, error) {
	return r.updateMedia(userID, avatarURL, true)
}

func (r *fakeUserRepo) UpdateCoverImage(ctx context.Context, userID, coverImageURL string) (*domain.User, error) {
	return r.updateMedia(userID, coverImageURL, false)
}

func (r *fakeUserRepo) updateMedia(userID, url string, avatar bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if avatar {
		u.AvatarURL = url
	} else {
		u.CoverImageURL = url
	}
	u.UpdatedAt = time.Now()
	clone := *u
	return &clone, nil
}

// stored returns the raw record, bypassing the sanitized responses.
func (r *fakeUserRepo) stored(userID string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	clone := *u
	return &clone
}

// fakeUploader records uploads and hands back deterministic URLs.
type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (u *fakeUploader) Upload(ctx context.Context, folder string, file *service.FileUpload) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	url := fmt.Sprintf("https://cdn.test/%s/%d-%s", folder, len(u.uploads), file.Filename)
	u.uploads = append(u.uploads, url)
	return url, nil
}

// fakeSubscriptionRepo keeps subscriber->channel edges in memory.
type fakeSubscriptionRepo struct {
	mu    sync.Mutex
	edges map[string]bool // "subscriber/channel"
	users *fakeUserRepo
	err   error
}

func newFakeSubscriptionRepo(users *fakeUserRepo) *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{edges: make(map[string]bool), users: users}
}

func edgeKey(subscriberID, channelID string) string {
	return subscriberID + "/" + channelID
}

func (r *fakeSubscriptionRepo) GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	if r.err != nil {
		return nil, r.err
	}

	channel, err := r.users.GetByUsernameOrEmail(ctx, username, "")
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profile := &domain.ChannelProfile{
		ID:            channel.ID,
		Username:      channel.Username,
		Email:         channel.Email,
		FullName:      channel.FullName,
		AvatarURL:     channel.AvatarURL,
		CoverImageURL: channel.CoverImageURL,
		CreatedAt:     channel.CreatedAt,
	}

	for edge := range r.edges {
		subscriberID, channelID, _ := strings.Cut(edge, "/")
		if channelID == channel.ID {
			profile.SubscriberCount++
			if subscriberID == viewerID {
				profile.IsSubscribed = true
			}
		}
		if subscriberID == channel.ID {
			profile.SubscribedTo++
		}
	}

	return profile, nil
}

func (r *fakeSubscriptionRepo) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.edges[edgeKey(subscriberID, channelID)] = true
	return nil
}

func (r *fakeSubscriptionRepo) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.edges, edgeKey(subscriberID, channelID))
	return nil
}
