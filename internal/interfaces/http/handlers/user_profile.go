// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fashion-store/internal/domain/user"
	"github.com/your-org/fashion-store/internal/interfaces/http/middleware"
)

// UserProfileHandler handles the signed-in customer's account endpoints
type UserProfileHandler struct {
	userService *user.Service
}

// NewUserProfileHandler creates a new user profile handler
func NewUserProfileHandler(userService *user.Service) *UserProfileHandler {
	return &UserProfileHandler{userService: userService}
}

// GetProfile handles GET /users/me
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

// UpdateProfile handles PUT /users/me
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req user.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

// ChangePassword handles PUT /users/me/password
func (h *UserProfileHandler) ChangePassword(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), principal.UserID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

// DarkModeRequest sets the preference explicitly. Omitting Enabled toggles it.
type DarkModeRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetDarkMode handles PUT /users/me/dark-mode. The preference is stored on the
// account and mirrored into the browsing session.
func (h *UserProfileHandler) SetDarkMode(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req DarkModeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	enabled := false
	if req.Enabled != nil {
		enabled = *req.Enabled
	} else {
		profile, err := h.userService.GetProfile(ctx, principal.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		enabled = !profile.DarkMode
	}

	if err := h.userService.SetDarkMode(ctx, principal.UserID, enabled); err != nil {
		respondError(c, err)
		return
	}

	if sess, ok := middleware.GetSession(c); ok {
		sess.DarkMode = enabled
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Preference saved",
		"data":    gin.H{"dark_mode": enabled},
	})
}
