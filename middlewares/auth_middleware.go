package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

// AuthMiddleware accepts "Authorization: Bearer <jwt>" or, for websocket
// upgrades where browsers cannot set headers, a ?token= query parameter.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if header := c.GetHeader("Authorization"); header != "" {
			if !strings.HasPrefix(header, "Bearer ") {
				Abort(c, utils.NewAPIError(http.StatusUnauthorized, "invalid authorization format"))
				return
			}
			tokenString = strings.TrimPrefix(header, "Bearer ")
		} else {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			Abort(c, utils.NewAPIError(http.StatusUnauthorized, "Authorization header missing"))
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil || claims.UserID == 0 {
			Abort(c, utils.NewAPIError(http.StatusUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole -> hanya role tertentu yang boleh lanjut
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			Abort(c, utils.NewAPIError(http.StatusUnauthorized, "unauthorized"))
			return
		}
		if !allowed[role] {
			Abort(c, utils.NewAPIError(http.StatusForbidden, "%s access is not allowed here", role))
			return
		}
		c.Next()
	}
}
