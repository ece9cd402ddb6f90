package public

import (
	"strings"

	"github.com/bestie-next/internal/http/handlers/shared"
	"github.com/bestie-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	profileIDContextKey    = "profile_id"
	profileEmailContextKey = "profile_email"
)

func getProfileID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, profileIDContextKey)
}

func getProfileEmail(c *gin.Context) (string, bool) {
	value, exists := c.Get(profileEmailContextKey)
	if !exists {
		shared.RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return "", false
	}
	email, ok := value.(string)
	if !ok || strings.TrimSpace(email) == "" {
		shared.RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return "", false
	}
	return email, true
}
