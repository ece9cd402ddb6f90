package admin

import (
	"errors"
	"strings"

	"github.com/bestie-next/internal/http/handlers/shared"
	"github.com/bestie-next/internal/http/response"
	"github.com/bestie-next/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultDebugRecordLimit = 100
	maxRecoveryBatchSize    = 50
)

type debugHistoryRequest struct {
	Email      string `json:"email" binding:"required,email"`
	StripeMode string `json:"stripe_mode" binding:"required"`
	Limit      int    `json:"limit"`
}

// DebugDonationHistory 构建指定邮箱的审计快照
// 错误原样透出给排查人员，不做脱敏或归一化
func (h *Handler) DebugDonationHistory(c *gin.Context) {
	var req debugHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "email and stripe_mode are required", err)
		return
	}
	mode := service.NormalizeStripeMode(req.StripeMode)
	if mode == "" {
		shared.RespondError(c, response.CodeBadRequest, "stripe_mode must be test or live", nil)
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultDebugRecordLimit
	}

	snapshot, err := h.DebugService.BuildSnapshot(c.Request.Context(), req.Email, mode, limit)
	if err != nil {
		if errors.Is(err, service.ErrStripeModeNotConfigured) {
			shared.RespondError(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}

	shared.RequestLog(c).Infow("admin_debug_history",
		"email", req.Email,
		"mode", mode,
		"records", len(snapshot.Records),
	)
	response.Success(c, snapshot)
}

type adminHistoryRequest struct {
	Email      string `json:"email" binding:"required,email"`
	StripeMode string `json:"stripe_mode"`
}

// LookupDonationHistory 以捐赠人视角查看指定邮箱的历史
// 管理端属于特权调用方，可通过 stripe_mode 覆盖平台默认模式
func (h *Handler) LookupDonationHistory(c *gin.Context) {
	var req adminHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "email is required", err)
		return
	}

	history, err := h.HistoryService.GetHistory(c.Request.Context(), req.Email, req.StripeMode, true)
	if err != nil {
		if errors.Is(err, service.ErrStripeModeNotConfigured) || errors.Is(err, service.ErrUnknownStripeMode) {
			shared.RespondError(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}

	shared.RequestLog(c).Infow("admin_donation_history",
		"email", req.Email,
		"mode", history.StripeMode,
		"donations", len(history.Donations),
	)
	response.Success(c, history)
}

type recoveryTransaction struct {
	ChargeID string `json:"charge_id" binding:"required"`
}

type recoverRequest struct {
	Mode         string                `json:"mode" binding:"required"`
	Transactions []recoveryTransaction `json:"transactions" binding:"required,min=1"`
}

// RecoverDonations 按扣款 ID 列表补录缺失的捐赠与收据
func (h *Handler) RecoverDonations(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "mode and transactions are required", err)
		return
	}
	mode := service.NormalizeStripeMode(req.Mode)
	if mode == "" {
		shared.RespondError(c, response.CodeBadRequest, "mode must be test or live", nil)
		return
	}
	if len(req.Transactions) > maxRecoveryBatchSize {
		shared.RespondError(c, response.CodeBadRequest, "too many transactions in one batch", nil)
		return
	}

	chargeIDs := make([]string, 0, len(req.Transactions))
	for _, txn := range req.Transactions {
		if id := strings.TrimSpace(txn.ChargeID); id != "" {
			chargeIDs = append(chargeIDs, id)
		}
	}
	if len(chargeIDs) == 0 {
		shared.RespondError(c, response.CodeBadRequest, "no charge ids provided", nil)
		return
	}

	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	report, err := h.RecoveryService.Recover(c.Request.Context(), mode, chargeIDs)
	if err != nil {
		if errors.Is(err, service.ErrStripeModeNotConfigured) || errors.Is(err, service.ErrUnknownStripeMode) {
			shared.RespondError(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}

	shared.RequestLog(c).Infow("admin_recover_donations",
		"admin_id", adminID,
		"mode", mode,
		"requested", report.Summary.Requested,
		"recovered", report.Summary.Recovered,
		"skipped", report.Summary.Skipped,
		"failed", report.Summary.Failed,
	)
	response.Success(c, report)
}
