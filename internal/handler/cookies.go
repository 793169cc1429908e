package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Zeethx/NebulaView/internal/config"
	"github.com/Zeethx/NebulaView/internal/domain"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// CookieWriter sets and clears the credential cookies. Both cookies are
// httpOnly; the tokens also travel in response bodies for non-browser
// clients.
type CookieWriter struct {
	domain        string
	secure        bool
	accessMaxAge  int
	refreshMaxAge int
}

func NewCookieWriter(cfg config.CookieConfig, accessMaxAge, refreshMaxAge int) *CookieWriter {
	return &CookieWriter{
		domain:        cfg.Domain,
		secure:        cfg.Secure,
		accessMaxAge:  accessMaxAge,
		refreshMaxAge: refreshMaxAge,
	}
}

func (w *CookieWriter) setTokens(c *gin.Context, pair *domain.TokenPair) {
	c.SetCookie(accessTokenCookie, pair.AccessToken, w.accessMaxAge, "/", w.domain, w.secure, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, w.refreshMaxAge, "/", w.domain, w.secure, true)
}

func (w *CookieWriter) clearTokens(c *gin.Context) {
	c.SetCookie(accessTokenCookie, "", -1, "/", w.domain, w.secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", w.domain, w.secure, true)
}
