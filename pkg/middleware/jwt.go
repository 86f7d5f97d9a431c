package middleware

import (
	"bitwise74/auth-api/pkg/security"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewJWTMiddleware only lets requests through that carry a valid accessToken
// cookie. The claims are stored under "claims" and the account id under "userID"
func NewJWTMiddleware(t *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		tokenStr, err := c.Cookie("accessToken")
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "Not authenticated",
				"requestID": requestID,
			})
			return
		}

		claims, err := t.ParseAccess(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "Invalid or expired token",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected access token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("claims", claims)
		c.Set("userID", claims.ID)
		c.Next()
	}
}
