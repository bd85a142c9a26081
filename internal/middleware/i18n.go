// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", ParseLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// ParseLanguage picks the first preference of an Accept-Language header,
// e.g. "ru-RU,ru;q=0.9,en;q=0.8", and maps it to a supported locale.
func ParseLanguage(header string) string {
	if header == "" {
		return "en"
	}

	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch strings.ToLower(first) {
	case "ru", "ru-ru", "ru_ru", "be", "kk", "uk":
		return "ru"
	default:
		return "en"
	}
}
