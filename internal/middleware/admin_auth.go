package middleware

import (
	"net/http"

	"freeark_web/internal/model"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware 只放行管理员，必须在 AuthMiddleware 之后执行。
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get(ContextUser)
		if !exists {
			abort(c, http.StatusUnauthorized, "User not found in context")
			return
		}
		user, ok := userVal.(*model.User)
		if !ok {
			abort(c, http.StatusInternalServerError, "Failed to get user profile")
			return
		}
		if !user.IsAdmin() {
			abort(c, http.StatusForbidden, "Forbidden: Only admin can access this resource")
			return
		}
		c.Next()
	}
}
