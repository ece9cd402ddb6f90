package public

import (
	"errors"

	"github.com/bestie-next/internal/http/handlers/shared"
	"github.com/bestie-next/internal/http/response"
	"github.com/bestie-next/internal/service"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 捐赠人登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "email and password are required", err)
		return
	}

	profile, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			shared.RespondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrAccountDisabled):
			shared.RespondError(c, response.CodeForbidden, "account is disabled", nil)
		default:
			shared.RespondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	shared.RequestLog(c).Infow("donor_login", "profile_id", profile.ID)
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt.Unix(),
		"profile": gin.H{
			"id":           profile.ID,
			"email":        profile.Email,
			"display_name": profile.DisplayName,
		},
	})
}

// GetCurrentProfile 获取当前捐赠人信息
func (h *Handler) GetCurrentProfile(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	profile, err := h.ProfileRepo.GetByID(profileID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "load profile failed", err)
		return
	}
	if profile == nil {
		response.NotFound(c, "profile not found")
		return
	}
	response.Success(c, profile)
}
