package admin

import (
	"github.com/bestie-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

const adminIDContextKey = "admin_id"

func getAdminID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, adminIDContextKey)
}
