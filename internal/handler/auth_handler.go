package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zeethx/NebulaView/internal/dto"
	"github.com/Zeethx/NebulaView/internal/service"
)

// AuthHandler handles registration and the session lifecycle
type AuthHandler struct {
	authService service.AuthService
	cookies     *CookieWriter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, cookies *CookieWriter) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an account from a multipart form with an avatar and optional cover image
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	avatar, closeAvatar, err := formFile(c, "avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "invalid avatar file",
		})
		return
	}
	defer closeAvatar()

	coverImage, closeCover, err := formFile(c, "coverImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "invalid cover image file",
		})
		return
	}
	defer closeCover()

	input := service.RegisterInput{
		FullName:   c.PostForm("fullName"),
		Email:      c.PostForm("email"),
		Username:   c.PostForm("username"),
		Password:   c.PostForm("password"),
		Avatar:     avatar,
		CoverImage: coverImage,
	}

	user, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login handles user login
// @Summary Login user
// @Description Verify credentials and open a session; tokens are set as httpOnly cookies and returned in the body
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.cookies.setTokens(c, response.TokenPair())

	c.JSON(http.StatusOK, response)
}

// Refresh handles token rotation
// @Summary Refresh tokens
// @Description Exchange a valid refresh token, from the cookie or the body, for a fresh pair
// @Tags auth
// @Produce json
// @Success 200 {object} domain.TokenPair
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/refresh-token [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil || refreshToken == "" {
		var req dto.RefreshRequest
		_ = c.ShouldBindJSON(&req)
		refreshToken = req.RefreshToken
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		writeError(c, err)
		return
	}

	h.cookies.setTokens(c, pair)

	c.JSON(http.StatusOK, pair)
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the stored refresh token and clear the credential cookies
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	h.cookies.clearTokens(c)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "logged out successfully",
	})
}

// ChangePassword handles password change for the authenticated user
// @Summary Change password
// @Description Replace the password after verifying the old one; the active session survives
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change password request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "authentication required")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "password changed successfully",
	})
}

// formFile reads an optional multipart file field. A missing file is not an
// error; the services decide which files are required.
func formFile(c *gin.Context, field string) (*service.FileUpload, func(), error) {
	noop := func() {}

	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, noop, err
	}

	return &service.FileUpload{
		Reader:      f,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, func() { _ = f.Close() }, nil
}
