// internal/middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

const currentUserKey = "current_user"

var sessionCookieName = "session_token"

// SetSessionCookieName configures the cookie consulted when no bearer
// token is sent.
func SetSessionCookieName(name string) {
	if name != "" {
		sessionCookieName = name
	}
}

func SessionCookieName() string {
	return sessionCookieName
}

// TokenFromRequest returns the bearer token, falling back to the session
// cookie.
func TokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func setClaims(c *gin.Context, claims *utils.JWTClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
}

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token := TokenFromRequest(c)
		if token == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFromRequest(c); token != "" {
			if claims, err := utils.ValidateJWT(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// LoadUser resolves the authenticated user from the database so role and
// company membership are current rather than whatever the token carried.
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		userID, ok := utils.GetUserIDFromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			} else {
				utils.InternalErrorResponse(c, "")
			}
			c.Abort()
			return
		}

		if user.Status == models.UserStatusBlocked {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthAccountBlocked))
			c.Abort()
			return
		}

		c.Set(currentUserKey, &user)
		c.Set("role", string(user.Role))
		c.Next()
	}
}

// LoadOptionalUser is LoadUser for public routes: failures leave the
// request anonymous.
func LoadOptionalUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			var user models.User
			if err := db.First(&user, "id = ?", userID).Error; err == nil && user.Status != models.UserStatusBlocked {
				c.Set(currentUserKey, &user)
				c.Set("role", string(user.Role))
			}
		}
		c.Next()
	}
}

// AdminRequired checks the role of the user loaded by LoadUser, so a
// demotion takes effect before the token expires. It must run after
// LoadUser.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by LoadUser or LoadOptionalUser.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(currentUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID is a convenience for handlers that only need the id.
func CurrentUserID(c *gin.Context) uuid.UUID {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return uuid.Nil
}

// SocketToken lets websocket clients, which cannot set headers on the
// handshake, pass the session token as ?token=.
func SocketToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if TokenFromRequest(c) == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}
