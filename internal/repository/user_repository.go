package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Zeethx/NebulaView/internal/domain"
	"github.com/Zeethx/NebulaView/internal/utils"
	"github.com/Zeethx/NebulaView/pkg/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db         *database.Postgres
	bcryptCost int
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres, bcryptCost int) UserRepository {
	return &userRepository{db: db, bcryptCost: bcryptCost}
}

// Create hashes the plaintext password and inserts the user record.
func (r *userRepository) Create(ctx context.Context, user *domain.User, password string) error {
	passwordHash, err := utils.HashPassword(password, r.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	query := `
		INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.AvatarURL,
		user.CoverImageURL,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("username %s or email %s taken: %w", user.Username, user.Email, ErrDuplicateUser)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByUsernameOrEmail retrieves a user matching either identifier. Both
// arguments are expected pre-normalized (trimmed, lowercased); an empty
// argument matches nothing.
func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE (username = $1 AND $1 <> '') OR (email = $2 AND $2 <> '')`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, username, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s/%s not found: %w", username, email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username or email: %w", err)
	}

	return user, nil
}

// SetRefreshToken overwrites the stored refresh token; "" clears it.
// This single-field update is the revocation point for prior sessions.
func (r *userRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	query := `UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1`

	return r.execOnUser(ctx, query, userID, token, time.Now())
}

// SetPassword re-hashes the plaintext and rewrites the stored hash.
func (r *userRepository) SetPassword(ctx context.Context, userID, password string) error {
	passwordHash, err := utils.HashPassword(password, r.bcryptCost)
	if err != nil {
		return err
	}

	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`

	return r.execOnUser(ctx, query, userID, passwordHash, time.Now())
}

// UpdateProfile updates fullName and/or email; empty arguments leave the
// current value in place. Returns the updated record.
func (r *userRepository) UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET full_name = COALESCE(NULLIF($2, ''), full_name),
		    email = COALESCE(NULLIF($3, ''), email),
		    updated_at = $4
		WHERE id = $1
		RETURNING %s`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, userID, fullName, email, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, fmt.Errorf("email %s taken: %w", email, ErrDuplicateUser)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// UpdateAvatar replaces the avatar reference
func (r *userRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*domain.User, error) {
	return r.updateMediaRef(ctx, "avatar_url", userID, avatarURL)
}

// UpdateCoverImage replaces the cover image reference
func (r *userRepository) UpdateCoverImage(ctx context.Context, userID, coverImageURL string) (*domain.User, error) {
	return r.updateMediaRef(ctx, "cover_image_url", userID, coverImageURL)
}

func (r *userRepository) updateMediaRef(ctx context.Context, column, userID, url string) (*domain.User, error) {
	query := fmt.Sprintf(`UPDATE users SET %s = $2, updated_at = $3 WHERE id = $1 RETURNING %s`, column, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, userID, url, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update %s: %w", column, err)
	}

	return user, nil
}

func (r *userRepository) execOnUser(ctx context.Context, query string, args ...any) error {
	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepository) scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
