package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Zeethx/NebulaView/internal/apperr"
	"github.com/Zeethx/NebulaView/internal/domain"
	"github.com/Zeethx/NebulaView/internal/dto"
	"github.com/Zeethx/NebulaView/internal/repository"
	"github.com/Zeethx/NebulaView/internal/utils"
)

// userService implements UserService interface
type userService struct {
	userRepo         repository.UserRepository
	subscriptionRepo repository.SubscriptionRepository
	uploader         MediaUploader
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, subscriptionRepo repository.SubscriptionRepository, uploader MediaUploader) UserService {
	return &userService{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		uploader:         uploader,
	}
}

// GetUser returns the sanitized record for an account
func (s *userService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to get user", err)
	}

	return dto.NewUserResponse(user), nil
}

// UpdateProfile updates fullName and/or email. Absent fields keep their
// current value; a provided field must not be blank.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := utils.NormalizeIdentifier(req.Email)

	if fullName == "" && email == "" {
		return nil, apperr.New(apperr.KindValidation, "nothing to update")
	}
	if req.FullName != "" && fullName == "" {
		return nil, apperr.New(apperr.KindValidation, "full name must not be blank")
	}
	if email != "" && !utils.ValidateEmail(email) {
		return nil, apperr.New(apperr.KindValidation, "invalid email address")
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		case errors.Is(err, repository.ErrDuplicateUser):
			return nil, apperr.New(apperr.KindConflict, "email already in use")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update profile", err)
	}

	return dto.NewUserResponse(user), nil
}

// UpdateAvatar uploads the new avatar and replaces the stored reference
func (s *userService) UpdateAvatar(ctx context.Context, userID string, file *FileUpload) (*dto.UserResponse, error) {
	return s.replaceMedia(ctx, userID, file, "avatars", s.userRepo.UpdateAvatar)
}

// UpdateCoverImage uploads the new cover image and replaces the stored reference
func (s *userService) UpdateCoverImage(ctx context.Context, userID string, file *FileUpload) (*dto.UserResponse, error) {
	return s.replaceMedia(ctx, userID, file, "covers", s.userRepo.UpdateCoverImage)
}

func (s *userService) replaceMedia(
	ctx context.Context,
	userID string,
	file *FileUpload,
	folder string,
	update func(ctx context.Context, userID, url string) (*domain.User, error),
) (*dto.UserResponse, error) {
	if file == nil {
		return nil, apperr.New(apperr.KindValidation, "image file is required")
	}

	url, err := s.uploader.Upload(ctx, folder, file)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to upload image", err)
	}

	user, err := update(ctx, userID, url)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update image reference", err)
	}

	return dto.NewUserResponse(user), nil
}

// GetChannelProfile returns the channel page for a username. viewerID is ""
// for anonymous viewers.
func (s *userService) GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	username = utils.NormalizeIdentifier(username)
	if username == "" {
		return nil, apperr.New(apperr.KindValidation, "username is required")
	}

	profile, err := s.subscriptionRepo.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "channel does not exist")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to get channel profile", err)
	}

	return profile, nil
}

// Subscribe subscribes the viewer to the named channel
func (s *userService) Subscribe(ctx context.Context, viewerID, username string) error {
	channel, err := s.resolveChannel(ctx, username)
	if err != nil {
		return err
	}
	if channel.ID == viewerID {
		return apperr.New(apperr.KindValidation, "cannot subscribe to your own channel")
	}

	if err := s.subscriptionRepo.Subscribe(ctx, viewerID, channel.ID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to subscribe", err)
	}
	return nil
}

// Unsubscribe removes the viewer's subscription to the named channel
func (s *userService) Unsubscribe(ctx context.Context, viewerID, username string) error {
	channel, err := s.resolveChannel(ctx, username)
	if err != nil {
		return err
	}

	if err := s.subscriptionRepo.Unsubscribe(ctx, viewerID, channel.ID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to unsubscribe", err)
	}
	return nil
}

func (s *userService) resolveChannel(ctx context.Context, username string) (*domain.User, error) {
	username = utils.NormalizeIdentifier(username)
	if username == "" {
		return nil, apperr.New(apperr.KindValidation, "username is required")
	}

	channel, err := s.userRepo.GetByUsernameOrEmail(ctx, username, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "channel does not exist")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to resolve channel", err)
	}

	return channel, nil
}
