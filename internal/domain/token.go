package domain

import "time"

// AccessTokenClaims is the decoded payload of an access token. Identity
// fields are denormalized so protected handlers can respond without a
// database round trip when they only need the identity.
type AccessTokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat"`
}

// TokenPair represents a freshly issued access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IsExpired checks if the token is expired
func (tc AccessTokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}
