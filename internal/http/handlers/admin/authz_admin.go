package admin

import (
	"strconv"

	"github.com/bestie-next/internal/http/handlers/shared"
	"github.com/bestie-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAuthzMe 查询当前管理员的角色
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}
	isSuper := false
	if value, exists := c.Get("admin_is_super"); exists {
		if super, typeOK := value.(bool); typeOK {
			isSuper = super
		}
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"roles":    roles,
		"is_super": isSuper,
	})
}

// ListAuthzRoles 列出全部角色
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}
	response.Success(c, gin.H{"roles": roles})
}

// GetAuthzAdminRoles 查询指定管理员的角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID := paramUint(c, "id")
	if adminID == 0 {
		response.BadRequest(c, "invalid admin id")
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}
	response.Success(c, gin.H{"admin_id": adminID, "roles": roles})
}

type setAdminRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// SetAuthzAdminRoles 覆盖设置指定管理员的角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID := paramUint(c, "id")
	if adminID == 0 {
		response.BadRequest(c, "invalid admin id")
		return
	}
	var req setAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "roles are required", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}
	response.Success(c, gin.H{"admin_id": adminID, "roles": roles})
}

func paramUint(c *gin.Context, key string) uint {
	value, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
