package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"absensi/internal/attendance"
)

// Context keys set by SessionAuth.
const (
	ClaimsKey = "claims"
	UserKey   = "user"
)

// SessionSource exposes the single active session and the id of the token
// bound to it.
type SessionSource interface {
	Session() (attendance.User, string, bool)
}

// SessionAuth enforces bearer JWT tokens signed with HS256 that were issued
// for the session currently open: the subject must be the logged in user and
// the token id the one bound at login. Logging out or logging in again
// invalidates every earlier token.
func SessionAuth(signingKey, issuer string, sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		user, tokenID, ok := sessions.Session()
		if !ok || user.ID != claims.Subject || tokenID == "" || tokenID != claims.ID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by SessionAuth.
func CurrentUser(c *gin.Context) (attendance.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return attendance.User{}, false
	}
	u, ok := v.(attendance.User)
	return u, ok
}
