// internal/middleware/pages.go
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

const (
	cabinetPrefix = "/cabinet"
	adminPrefix   = "/cabinet/admin"
)

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// PageGuard redirects browsers away from cabinet pages without a session
// and away from admin pages without the ADMIN role.
func PageGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !hasPathPrefix(path, cabinetPrefix) {
			c.Next()
			return
		}

		var claims *utils.JWTClaims
		if token := TokenFromRequest(c); token != "" {
			claims, _ = utils.ValidateJWT(token)
		}

		if claims == nil {
			c.Redirect(http.StatusFound, "/login?callbackUrl="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		if hasPathPrefix(path, adminPrefix) && claims.Role != string(models.RoleAdmin) {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}
