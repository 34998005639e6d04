package middleware

import (
	"net/http"
	"strings"

	jwtsvc "uniportal/internal/pkg/jwt"
	"uniportal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const accessCookieName = "access_token"

// JWTAuth verifies the access token on every protected request and
// attaches user_id and role to the gin context. Validation is purely
// signature + clock; there is no store lookup on this path.
//
// The token is read from the access cookie first (the browser
// transport), falling back to an Authorization bearer header for API
// clients.
func JWTAuth(jwtService *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, errCode := extractAccessToken(c)
		if errCode != "" {
			response.Error(c, http.StatusUnauthorized, errCode, "Authentication required")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenStr)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Access token is invalid or expired")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func extractAccessToken(c *gin.Context) (token string, errCode string) {
	if cookie, err := c.Cookie(accessCookieName); err == nil && cookie != "" {
		return cookie, ""
	}

	h := c.GetHeader("Authorization")
	if h == "" {
		return "", "AUTH_TOKEN_MISSING"
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "INVALID_AUTH_FORMAT"
	}
	return strings.TrimSpace(parts[1]), ""
}
