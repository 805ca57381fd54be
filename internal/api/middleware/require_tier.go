package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speaksharp/speaksharp/internal/utils"
)

// Entitlements answers whether a user currently has premium access.
type Entitlements interface {
	Entitled(ctx context.Context, userID string) (bool, error)
}

// RequirePro guards routes that are premium-only in their entirety.
// Per-lesson premium gating happens in the content service; this is for
// surfaces like session history export where the whole route is gated.
func RequirePro(ent Entitlements) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("user_id")
		userID, _ := v.(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "unauthorized",
			})
			return
		}

		entitled, err := ent.Entitled(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "failed to check entitlement",
			})
			return
		}
		if !entitled {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{
				Code:    utils.CodeForbidden,
				Message: "active subscription required",
			})
			return
		}

		c.Next()
	}
}
