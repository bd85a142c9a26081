package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/testutil"
	"github.com/exportplatform/export-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-test-secret")
}

func tokenFor(t *testing.T, role models.Role) string {
	t.Helper()
	token, err := utils.GenerateJWT(uuid.New(), "user@example.com", string(role), 1)
	require.NoError(t, err)
	return token
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/private", AuthRequired(), func(c *gin.Context) {
		role, _ := utils.GetRoleFromContext(c)
		c.String(http.StatusOK, role)
	})
	return r
}

func adminRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.GET("/admin", AuthRequired(), LoadUser(db), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func adminStatus(r *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthRequired(t *testing.T) {
	r := protectedRouter()

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleCompany))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "COMPANY", w.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: tokenFor(t, models.RoleClient)})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token is not a session", func(t *testing.T) {
		refresh, err := utils.GenerateRefreshToken(uuid.New(), 1)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminRequired(t *testing.T) {
	db := testutil.NewDB(t)
	r := adminRouter(db)

	for role, want := range map[models.Role]int{
		models.RoleAdmin:   http.StatusNoContent,
		models.RoleCompany: http.StatusForbidden,
		models.RoleClient:  http.StatusForbidden,
	} {
		user := testutil.CreateUser(t, db, role, strings.ToLower(string(role))+"@example.com")
		assert.Equal(t, want, adminStatus(r, testutil.Token(t, user)), "role %s", role)
	}

	t.Run("demoted admin loses access before the token expires", func(t *testing.T) {
		admin := testutil.CreateUser(t, db, models.RoleAdmin, "former-admin@example.com")
		token := testutil.Token(t, admin)
		require.Equal(t, http.StatusNoContent, adminStatus(r, token))

		require.NoError(t, db.Model(admin).Update("role", models.RoleClient).Error)
		assert.Equal(t, http.StatusForbidden, adminStatus(r, token))
	})

	t.Run("promoted user gains access with the old token", func(t *testing.T) {
		user := testutil.CreateUser(t, db, models.RoleClient, "new-admin@example.com")
		token := testutil.Token(t, user)
		require.Equal(t, http.StatusForbidden, adminStatus(r, token))

		require.NoError(t, db.Model(user).Update("role", models.RoleAdmin).Error)
		assert.Equal(t, http.StatusNoContent, adminStatus(r, token))
	})

	t.Run("without a loaded user", func(t *testing.T) {
		bare := gin.New()
		bare.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		assert.Equal(t, http.StatusForbidden, adminStatus(bare, tokenFor(t, models.RoleAdmin)))
	})
}

func TestPageGuard(t *testing.T) {
	r := gin.New()
	r.Use(PageGuard())
	r.GET("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("anonymous cabinet redirects to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cabinet/documents", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?callbackUrl=%2Fcabinet%2Fdocuments", w.Header().Get("Location"))
	})

	t.Run("client on admin page redirects home", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cabinet/admin", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: tokenFor(t, models.RoleClient)})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cabinet/admin/users", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: tokenFor(t, models.RoleAdmin)})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("public pages untouched", func(t *testing.T) {
		for _, path := range []string{"/", "/catalog", "/cabinetry"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, "en", ParseLanguage(""))
	assert.Equal(t, "ru", ParseLanguage("ru-RU,ru;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", ParseLanguage("de-DE,de;q=0.9"))
	assert.Equal(t, "en", ParseLanguage("en-US"))
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	r := gin.New()
	r.GET("/", NewRateLimiter(rate.Every(time.Hour), 2).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestDisabledRateLimitsPassThrough(t *testing.T) {
	limits := NewRateLimits(false, 1, 1, 1, 1)
	r := gin.New()
	r.GET("/", limits.Auth, func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAuditHelpers(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "documents", extractResourceType("/api/cabinet/documents/"+id.String()))
	assert.Equal(t, "users", extractResourceType("/api/admin/users"))
	assert.Equal(t, id, extractResourceID("/api/cabinet/documents/"+id.String()))
	assert.Equal(t, uuid.Nil, extractResourceID("/api/cabinet/documents"))

	body := sanitizeBody([]byte(`{"email":"a@b.c","password":"secret","code":"123456"}`))
	assert.Equal(t, map[string]interface{}{"email": "a@b.c"}, body)
	assert.Nil(t, sanitizeBody([]byte("not json")))
}
