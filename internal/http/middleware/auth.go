package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"madchef/internal/domain"
)

const claimsKey = "claims"

// TokenParser verifies access tokens.
type TokenParser interface {
	ParseAccess(raw string) (*domain.Claims, error)
}

func bearer(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Auth rejects requests without a valid access token.
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "access token required")
			return
		}
		claims, err := tokens.ParseAccess(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is sent and otherwise
// lets the request through anonymously. An invalid token is still an error.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			c.Next()
			return
		}
		claims, err := tokens.ParseAccess(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRoles only lets through callers holding one of roles. It must run
// after Auth.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		rc := RequestContext(c)
		if rc.Claims == nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "access token required")
			return
		}
		if _, ok := allowed[rc.Role()]; !ok {
			abort(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}
		c.Next()
	}
}

// RequestContext is what handlers hand to services about the caller.
func RequestContext(c *gin.Context) domain.RequestContext {
	rc := domain.RequestContext{RequestID: GetRequestID(c)}
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*domain.Claims); ok {
			rc.Claims = claims
		}
	}
	return rc
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      http.StatusText(status),
		"code":       code,
		"message":    message,
		"request_id": GetRequestID(c),
	})
}
