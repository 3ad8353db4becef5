package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/00yuyi00/ChongYu/internal/common"
)

// RequireAdmin checks that the authenticated user carries the admin flag
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			common.ErrorResponse(c, http.StatusForbidden, "需要管理员权限", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
