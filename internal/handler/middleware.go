package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zeethx/NebulaView/internal/domain"
	"github.com/Zeethx/NebulaView/internal/service"
)

const (
	ctxUserIDKey = "user_id"
	ctxUserKey   = "user"
)

// AuthMiddleware resolves the access token, from the Authorization header or
// the accessToken cookie, to a live user record and adds it to the context.
// Requests without a valid token are rejected.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAccessToken(c)
		if token == "" {
			abortUnauthorized(c, "authentication required")
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxUserIDKey, user.ID)
		c.Set(ctxUserKey, user)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves the access token when one is present but
// lets anonymous requests through. Used on public routes whose response is
// richer for authenticated viewers.
func OptionalAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAccessToken(c)
		if token != "" {
			if user, err := authService.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(ctxUserIDKey, user.ID)
				c.Set(ctxUserKey, user)
			}
		}

		c.Next()
	}
}

// extractAccessToken prefers the Authorization header and falls back to the
// accessToken cookie set on login.
func extractAccessToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	token, err := c.Cookie(accessTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// currentUserID returns the authenticated user id set by AuthMiddleware
func currentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// currentUser returns the full user record set by AuthMiddleware
func currentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(ctxUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
