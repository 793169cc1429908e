package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zeethx/NebulaView/internal/dto"
	"github.com/Zeethx/NebulaView/internal/service"
)

// UserHandler handles profile reads and mutations plus channel pages
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe returns the authenticated user's record
// @Summary Get current user profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	// the auth middleware already resolved the record; no second lookup
	user, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "authentication required")
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateProfile updates fullName and/or email of the authenticated user
// @Summary Update profile fields
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "authentication required")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateAvatar replaces the authenticated user's avatar
// @Summary Update avatar
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/avatar [patch]
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.replaceMedia(c, "avatar", h.userService.UpdateAvatar)
}

// UpdateCoverImage replaces the authenticated user's cover image
// @Summary Update cover image
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/cover-image [patch]
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.replaceMedia(c, "coverImage", h.userService.UpdateCoverImage)
}

func (h *UserHandler) replaceMedia(
	c *gin.Context,
	field string,
	update func(ctx context.Context, userID string, file *service.FileUpload) (*dto.UserResponse, error),
) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "authentication required")
		return
	}

	file, closeFile, err := formFile(c, field)
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: field + " file is required",
		})
		return
	}
	defer closeFile()

	user, err := update(c.Request.Context(), userID, file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetChannelProfile returns the public channel page for a username. The
// subscription flag reflects the viewer when a valid access token is present.
// @Summary Get channel profile
// @Tags users
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} domain.ChannelProfile
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/c/{username} [get]
func (h *UserHandler) GetChannelProfile(c *gin.Context) {
	viewerID, _ := currentUserID(c)

	profile, err := h.userService.GetChannelProfile(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Subscribe subscribes the authenticated user to a channel
// @Summary Subscribe to a channel
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/c/{username}/subscribe [post]
func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "authentication required")
		return
	}

	if err := h.userService.Subscribe(c.Request.Context(), userID, c.Param("username")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "subscribed",
	})
}

// Unsubscribe removes the authenticated user's subscription to a channel
// @Summary Unsubscribe from a channel
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/c/{username}/subscribe [delete]
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "authentication required")
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), userID, c.Param("username")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "unsubscribed",
	})
}
