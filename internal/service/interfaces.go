package service

import (
	"context"
	"io"

	"github.com/Zeethx/NebulaView/internal/domain"
	"github.com/Zeethx/NebulaView/internal/dto"
)

// FileUpload is a media file handed over by the transport layer.
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// MediaUploader stores a file durably and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, folder string, file *FileUpload) (string, error)
}

// RegisterInput carries the registration fields plus the media files.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *FileUpload
	CoverImage *FileUpload
}

// AuthService owns the session lifecycle: registration, credential
// verification, token issuance/rotation/revocation and password change.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// UserService covers profile reads and mutations plus the channel page.
type UserService interface {
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, userID string, file *FileUpload) (*dto.UserResponse, error)
	UpdateCoverImage(ctx context.Context, userID string, file *FileUpload) (*dto.UserResponse, error)
	GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	Subscribe(ctx context.Context, viewerID, username string) error
	Unsubscribe(ctx context.Context, viewerID, username string) error
}
