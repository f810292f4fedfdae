package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/service"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
	"github.com/givegoa/givegoa-api/pkg/response"
)

// RequireAction rejects callers whose role is never granted action. Status
// preconditions are left to the service, which sees the target request.
func RequireAction(action service.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !service.Allowed(user.Role, action) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s may not %s", user.Role, action)))
			c.Abort()
			return
		}
		c.Next()
	}
}
