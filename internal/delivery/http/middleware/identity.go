package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/finquest/internal/delivery/http/response"
)

// UserIDHeader carries the player id set by the upstream auth proxy.
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

var errMissingUser = errors.New("missing " + UserIDHeader + " header")

// RequireUser rejects requests without a player id and stores it on the context.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			response.RespondError(c, http.StatusUnauthorized, "missing_user", errMissingUser)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the id stored by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
