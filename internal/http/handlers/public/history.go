package public

import (
	"github.com/bestie-next/internal/http/handlers/shared"
	"github.com/bestie-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type donationHistoryRequest struct {
	StripeMode string `json:"stripe_mode"`
}

// GetDonationHistory 查询当前捐赠人的完整捐赠历史
// 模式覆盖对捐赠人不生效，始终按平台默认模式查询
func (h *Handler) GetDonationHistory(c *gin.Context) {
	email, ok := getProfileEmail(c)
	if !ok {
		return
	}

	var req donationHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		shared.RespondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	history, err := h.HistoryService.GetHistory(c.Request.Context(), email, req.StripeMode, false)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "build donation history failed", err)
		return
	}
	response.Success(c, history)
}
