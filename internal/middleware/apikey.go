package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const apiKeyHeader = "X-API-KEY"

// APIKeyMiddleware rejects requests that do not carry the configured API
// key in the X-API-KEY header. The key may be configured either as
// plaintext or as a bcrypt hash; with neither configured, all requests
// pass.
type APIKeyMiddleware struct {
	key     string
	keyHash string
}

func NewAPIKey(key, keyHash string) *APIKeyMiddleware {
	return &APIKeyMiddleware{key: key, keyHash: keyHash}
}

func (m *APIKeyMiddleware) Enabled() bool {
	return m.key != "" || m.keyHash != ""
}

func (m *APIKeyMiddleware) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Enabled() {
			c.Next()
			return
		}

		got := c.GetHeader(apiKeyHeader)
		if got == "" || !m.match(got) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  http.StatusUnauthorized,
				"error": "Invalid API key",
			})
			return
		}

		c.Next()
	}
}

func (m *APIKeyMiddleware) match(got string) bool {
	if m.keyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(m.keyHash), []byte(got)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(m.key), []byte(got)) == 1
}
