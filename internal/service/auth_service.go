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

// authService implements AuthService interface
type authService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	uploader   MediaUploader
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager, uploader MediaUploader) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		uploader:   uploader,
	}
}

// Register validates the input, uploads the media files and creates the
// account. The returned record carries neither passwordHash nor refreshToken.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*dto.UserResponse, error) {
	fullName := input.FullName
	username := utils.NormalizeIdentifier(input.Username)
	email := utils.NormalizeIdentifier(input.Email)

	if utils.IsBlank(fullName) || username == "" || email == "" || utils.IsBlank(input.Password) {
		return nil, apperr.New(apperr.KindValidation, "all fields are required")
	}
	if !utils.ValidateEmail(email) {
		return nil, apperr.New(apperr.KindValidation, "invalid email address")
	}
	if !utils.ValidateUsername(username) {
		return nil, apperr.New(apperr.KindValidation, "username must be 3-30 characters: letters, digits, _ or -")
	}
	if !utils.ValidatePassword(input.Password) {
		return nil, apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}
	if input.Avatar == nil {
		return nil, apperr.New(apperr.KindValidation, "avatar file is required")
	}

	// Best-effort existence check; the unique index closes the race window.
	_, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, apperr.New(apperr.KindConflict, "user with email or username already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to check user existence", err)
	}

	avatarURL, err := s.uploader.Upload(ctx, "avatars", input.Avatar)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to upload avatar", err)
	}

	var coverImageURL string
	if input.CoverImage != nil {
		coverImageURL, err = s.uploader.Upload(ctx, "covers", input.CoverImage)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to upload cover image", err)
		}
	}

	user := &domain.User{
		Username:      username,
		Email:         email,
		FullName:      strings.TrimSpace(fullName),
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}

	if err := s.userRepo.Create(ctx, user, input.Password); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperr.Wrap(apperr.KindConflict, "user with email or username already exists", err)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}

	return dto.NewUserResponse(user), nil
}

// Login verifies the credentials, issues a token pair and persists the new
// refresh token, revoking whatever session existed before.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	username := utils.NormalizeIdentifier(req.Username)
	email := utils.NormalizeIdentifier(req.Email)

	if username == "" && email == "" {
		return nil, apperr.New(apperr.KindValidation, "username or email is required")
	}
	if req.Password == "" {
		return nil, apperr.New(apperr.KindValidation, "password is required")
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to get user", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the stored refresh token. Idempotent: logging out an
// already-anonymous user succeeds.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.SetRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to clear refresh token", err)
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new pair. The incoming token
// must match the one stored on the user record exactly; a superseded token is
// rejected even while cryptographically valid. The stored token is only
// overwritten after every check passes.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "refresh token is required")
	}

	userID, err := s.jwtManager.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired refresh token", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "invalid refresh token")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to get user", err)
	}

	if user.RefreshToken != refreshToken {
		return nil, apperr.New(apperr.KindUnauthorized, "refresh token is expired or already used")
	}

	return s.issueTokenPair(ctx, user)
}

// ChangePassword rewrites the password hash after verifying the old password.
// The stored refresh token is left untouched, so the active session survives.
func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperr.New(apperr.KindValidation, "old and new passwords are required")
	}
	if !utils.ValidatePassword(newPassword) {
		return apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to get user", err)
	}

	if !utils.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return apperr.New(apperr.KindUnauthorized, "old password is incorrect")
	}

	if err := s.userRepo.SetPassword(ctx, userID, newPassword); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to set password", err)
	}

	return nil
}

// Authenticate resolves an access token to the user record it identifies.
// Any verification failure, including a valid token for a deleted user,
// is unauthorized.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.jwtManager.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired access token", err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "invalid access token")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to get user", err)
	}

	return user, nil
}

// issueTokenPair signs a fresh access/refresh pair and persists the refresh
// token on the user record. Concurrent issuance for one user is last write
// wins; exactly one refresh token stays valid.
func (s *authService) issueTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate access token", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate refresh token", err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist refresh token", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
