package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"github.com/sotex-app/mantencion-api/internal/services"
)

// RequireAction checks the centralized permission table: the request
// proceeds only when the session user holds a role allowed to perform
// the action. Must run after RequireAuth.
func RequireAction(users repository.UserRepository, action services.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		roleNames, err := users.RoleNames(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to resolve permissions",
			})
			c.Abort()
			return
		}

		if !services.IsAllowed(roleNames, action) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
