package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/2025-Database-Soongsil/database/internal/crypto"
)

const userIDKey = "user_id"

// RequireAuth verifies the Authorization bearer token and stores the user id
// in the gin context for downstream handlers.
func RequireAuth(codec *crypto.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		userID, err := codec.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "유효하지 않은 토큰입니다."})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user's id from the gin context
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := v.(int64)
	return userID, ok
}
