package middleware

import (
	"github.com/bassista/studio_calendar/internal/auth"
	"github.com/gin-gonic/gin"
)

const authorizedKey = "studio_calendar.authorized"

// CredentialGate resolves HTTP Basic credentials into an authorized flag on
// the gin context. It never aborts: the service decides what an
// unauthorized caller may do.
func CredentialGate(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorized := false
		if user, secret, ok := c.Request.BasicAuth(); ok && authenticator != nil {
			authorized = authenticator.Verify(user, secret)
		}
		c.Set(authorizedKey, authorized)
		c.Next()
	}
}

// IsAuthorized reports the flag set by CredentialGate; false when absent.
func IsAuthorized(c *gin.Context) bool {
	return c.GetBool(authorizedKey)
}
