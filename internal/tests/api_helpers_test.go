package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/middleware"
	"github.com/exportplatform/export-api/internal/router"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/testutil"
)

// api is a router wired with in-memory drivers.
type api struct {
	db     *gorm.DB
	cfg    *config.Config
	mail   *testutil.Mail
	sms    *testutil.SMS
	store  *testutil.Store
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	gin.SetMode(gin.TestMode)
	a := &api{
		db:    testutil.NewDB(t),
		cfg:   testutil.Config(),
		mail:  &testutil.Mail{},
		sms:   &testutil.SMS{},
		store: testutil.NewStore(),
	}
	middleware.SetSessionCookieName(a.cfg.Session.CookieName)

	a.engine = router.New(a.db, a.cfg, router.Dependencies{
		Mail:    services.NewMailService(a.mail, a.cfg),
		SMS:     a.sms,
		Storage: services.NewStorageServiceWithStore(a.store),
		Search:  services.NewSearchService(config.SearchConfig{}),
	})
	return a
}

type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
	header      map[string]string
}

func (a *api) do(r request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *api) json(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return a.do(request{method: method, path: path, token: token, body: body, contentType: "application/json"})
}

// envelope is the common response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func sessionCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
