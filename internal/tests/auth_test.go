package tests

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/testutil"
)

type AuthTestSuite struct {
	suite.Suite
	api *api
}

func (suite *AuthTestSuite) SetupTest() {
	suite.api = newAPI(suite.T())
}

type authData struct {
	Message      string       `json:"message"`
	User         *models.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
}

func (suite *AuthTestSuite) TestRegisterAndLogin() {
	t := suite.T()

	w := suite.api.json(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Anna Petrova",
		"email":    "Anna@Example.com",
		"password": "Password123",
	})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	var registered authData
	env := decode(t, w, &registered)
	suite.True(env.Success)
	suite.Equal("anna@example.com", registered.User.Email)
	suite.Equal(models.RoleClient, registered.User.Role)
	suite.NotEmpty(registered.Token)

	cookie := sessionCookie(w, "session_token")
	suite.Require().NotNil(cookie)
	suite.True(cookie.HttpOnly)

	// duplicate email
	w = suite.api.json(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Anna Again",
		"email":    "anna@example.com",
		"password": "Password123",
	})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.api.json(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "anna@example.com",
		"password": "wrong-password",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.api.json(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "anna@example.com",
		"password": "Password123",
	})
	suite.Equal(http.StatusOK, w.Code)
	var loggedIn authData
	decode(t, w, &loggedIn)

	// the session cookie alone authenticates
	req := request{method: http.MethodGet, path: "/api/auth/session", header: map[string]string{
		"Cookie": "session_token=" + loggedIn.Token,
	}}
	suite.Equal(http.StatusOK, suite.api.do(req).Code)

	w = suite.api.json(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": loggedIn.RefreshToken})
	suite.Equal(http.StatusOK, w.Code)

	w = suite.api.json(t, http.MethodPost, "/api/auth/logout", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	cleared := sessionCookie(w, "session_token")
	suite.Require().NotNil(cleared)
	suite.Empty(cleared.Value)
}

func (suite *AuthTestSuite) TestRegisterValidation() {
	t := suite.T()

	w := suite.api.json(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "A",
		"email":    "not-an-email",
		"password": "short",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	suite.Require().NotNil(env.Error)
	suite.Equal("VALIDATION_ERROR", env.Error.Code)
	suite.Contains(string(env.Error.Details), `"field":"email"`)

	w = suite.api.json(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "anna@example.com"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", decode(t, w, nil).Error.Code)

	malformed := request{method: http.MethodPost, path: "/api/auth/login", body: strings.NewReader("{"), contentType: "application/json"}
	suite.Equal(http.StatusBadRequest, suite.api.do(malformed).Code)

	w = suite.api.json(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Admin Wannabe",
		"email":    "root@example.com",
		"password": "Password123",
		"role":     "ADMIN",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuthTestSuite) TestSessionRequiresToken() {
	t := suite.T()
	suite.Equal(http.StatusUnauthorized, suite.api.json(t, http.MethodGet, "/api/auth/session", "", nil).Code)
	suite.Equal(http.StatusUnauthorized, suite.api.json(t, http.MethodGet, "/api/auth/session", "garbage", nil).Code)
}

func (suite *AuthTestSuite) TestPasswordResetByEmail() {
	t := suite.T()
	testutil.CreateUser(t, suite.api.db, models.RoleClient, "ivan@example.com")

	w := suite.api.json(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ivan@example.com"})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Require().Len(suite.api.mail.Sent, 1)
	code := testutil.ExtractCode(suite.api.mail.Last().Body)
	suite.Require().Len(code, 6)

	query := url.Values{"code": {code}, "email": {"ivan@example.com"}}
	w = suite.api.json(t, http.MethodGet, "/api/auth/verify-reset-code?"+query.Encode(), "", nil)
	suite.Equal(http.StatusOK, w.Code)

	reset := map[string]string{"email": "ivan@example.com", "code": code, "password": "BrandNew123"}
	suite.Equal(http.StatusOK, suite.api.json(t, http.MethodPost, "/api/auth/reset-password", "", reset).Code)

	// single use
	suite.Equal(http.StatusBadRequest, suite.api.json(t, http.MethodPost, "/api/auth/reset-password", "", reset).Code)
	w = suite.api.json(t, http.MethodGet, "/api/auth/verify-reset-code?"+query.Encode(), "", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.api.json(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ivan@example.com", "password": "BrandNew123"})
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *AuthTestSuite) TestForgotPasswordNeedsIdentifier() {
	t := suite.T()
	w := suite.api.json(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Empty(suite.api.mail.Sent)
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
