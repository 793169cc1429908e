package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/Zeethx/NebulaView/internal/domain"
)

// Token verification failure kinds. Callers inside the service layer branch
// on these; they are all normalized to Unauthorized at the transport boundary.
var (
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenInvalid   = errors.New("token is invalid")
)

// JWTManager signs and verifies access and refresh tokens. Access and refresh
// tokens use distinct secrets so one can never be presented as the other.
// Pure and stateless; no I/O.
type JWTManager struct {
	accessSecret       []byte
	refreshSecret      []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(accessSecret, refreshSecret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		accessSecret:       []byte(accessSecret),
		refreshSecret:      []byte(refreshSecret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// GenerateAccessToken signs a short-lived token carrying the denormalized
// identity of the user.
func (j *JWTManager) GenerateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
		"exp":       now.Add(j.accessTokenExpiry).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken signs a long-lived token carrying only the user id.
func (j *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(j.refreshTokenExpiry).Unix(),
		"iat":     now.Unix(),
		"type":    "refresh",
		"jti":     uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// VerifyAccessToken verifies signature and expiry and returns the claims.
func (j *JWTManager) VerifyAccessToken(tokenString string) (*domain.AccessTokenClaims, error) {
	claims, err := j.parse(tokenString, j.accessSecret)
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrTokenInvalid)
	}

	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)
	fullName, _ := claims["full_name"].(string)

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing exp claim", ErrTokenInvalid)
	}
	iat, _ := claims["iat"].(float64)

	return &domain.AccessTokenClaims{
		UserID:   userID,
		Username: username,
		Email:    email,
		FullName: fullName,
		Exp:      int64(exp),
		Iat:      int64(iat),
	}, nil
}

// VerifyRefreshToken verifies signature, expiry and token type and returns
// the user id it was issued for.
func (j *JWTManager) VerifyRefreshToken(tokenString string) (string, error) {
	claims, err := j.parse(tokenString, j.refreshSecret)
	if err != nil {
		return "", err
	}

	if claims["type"] != "refresh" {
		return "", fmt.Errorf("%w: not a refresh token", ErrTokenInvalid)
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing user_id claim", ErrTokenInvalid)
	}

	return userID, nil
}

func (j *JWTManager) parse(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrTokenInvalid)
	}

	return claims, nil
}

// AccessTokenExpiry returns the access token lifetime in seconds
func (j *JWTManager) AccessTokenExpiry() int {
	return int(j.accessTokenExpiry.Seconds())
}

// RefreshTokenExpiry returns the refresh token lifetime in seconds
func (j *JWTManager) RefreshTokenExpiry() int {
	return int(j.refreshTokenExpiry.Seconds())
}
