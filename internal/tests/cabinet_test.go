package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/testutil"
)

type CabinetTestSuite struct {
	suite.Suite
	api   *api
	admin *models.User
	owner *models.User
}

func (suite *CabinetTestSuite) SetupTest() {
	t := suite.T()
	suite.api = newAPI(t)
	suite.admin = testutil.CreateUser(t, suite.api.db, models.RoleAdmin, "admin@example.com")
	suite.owner = testutil.CreateUser(t, suite.api.db, models.RoleClient, "owner@example.com")
}

type companyData struct {
	Company *models.Company `json:"company"`
	LogoURL *string         `json:"logo_url"`
}

func (suite *CabinetTestSuite) saveCompany(fields map[string]string, files map[string][]testutil.NamedFile) (int, companyData) {
	t := suite.T()
	body, contentType := testutil.MultipartBody(t, fields, files)
	w := suite.api.do(request{
		method:      http.MethodPost,
		path:        "/api/cabinet/company",
		token:       testutil.Token(t, suite.owner),
		body:        body,
		contentType: contentType,
	})
	var data companyData
	if w.Code == http.StatusOK {
		decode(t, w, &data)
	}
	return w.Code, data
}

func (suite *CabinetTestSuite) TestCompanyLifecycle() {
	t := suite.T()

	code, saved := suite.saveCompany(map[string]string{
		"name":      "Neva Motors",
		"country":   "Russia",
		"languages": "ru, en, ru",
		"inn":       "7707083893",
	}, map[string][]testutil.NamedFile{
		"logo": {{Name: "logo.png", Content: testutil.PNG}},
	})
	suite.Require().Equal(http.StatusOK, code)
	suite.Require().NotNil(saved.LogoURL)
	suite.True(strings.HasPrefix(*saved.LogoURL, "/uploads/"))
	suite.Equal(models.StringList{"ru", "en"}, saved.Company.Languages)
	suite.Equal(models.CompanyStatusPending, saved.Company.Status)

	exporter := "/api/exporters/" + saved.Company.ID.String()
	suite.Equal(http.StatusNotFound, suite.api.json(t, http.MethodGet, exporter, "", nil).Code)

	adminToken := testutil.Token(t, suite.admin)
	w := suite.api.json(t, http.MethodPut, "/api/admin/companies/"+saved.Company.ID.String()+"/status", adminToken,
		map[string]string{"action": "approve"})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.api.json(t, http.MethodGet, exporter, "", nil)
	suite.Equal(http.StatusOK, w.Code)
	var profile struct {
		Name    string  `json:"name"`
		LogoURL *string `json:"logo_url"`
	}
	decode(t, w, &profile)
	suite.Equal("Neva Motors", profile.Name)
	suite.Equal(saved.LogoURL, profile.LogoURL)

	w = suite.api.json(t, http.MethodGet, "/api/catalog?country=russia", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Neva Motors")
}

func (suite *CabinetTestSuite) TestCompanyValidation() {
	code, _ := suite.saveCompany(map[string]string{"name": "N"}, nil)
	suite.Equal(http.StatusBadRequest, code)

	code, _ = suite.saveCompany(map[string]string{"name": "Neva Motors", "inn": "123"}, nil)
	suite.Equal(http.StatusBadRequest, code)

	code, _ = suite.saveCompany(map[string]string{"name": "Neva Motors"}, map[string][]testutil.NamedFile{
		"logo": {{Name: "logo.png", Content: testutil.ELF}},
	})
	suite.Equal(http.StatusBadRequest, code)
	suite.Empty(suite.api.store.Objects)
}

func (suite *CabinetTestSuite) TestStatusCodeMapping() {
	t := suite.T()
	testutil.CreateCompany(t, suite.api.db, suite.owner, "Neva Motors")
	token := testutil.Token(t, suite.owner)

	suite.Equal(http.StatusUnauthorized, suite.api.json(t, http.MethodGet, "/api/cabinet/company", "", nil).Code)
	suite.Equal(http.StatusForbidden, suite.api.json(t, http.MethodGet, "/api/admin/users", token, nil).Code)
	suite.Equal(http.StatusNotFound, suite.api.json(t, http.MethodDelete, "/api/cabinet/employees/"+uuid.NewString(), token, nil).Code)
	suite.Equal(http.StatusBadRequest, suite.api.json(t, http.MethodDelete, "/api/cabinet/employees/not-a-uuid", token, nil).Code)

	category := map[string]string{"name": "Электромобили"}
	w := suite.api.json(t, http.MethodPost, "/api/cabinet/categories", token, category)
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.Contains(w.Body.String(), "elektromobili")
	suite.Equal(http.StatusConflict, suite.api.json(t, http.MethodPost, "/api/cabinet/categories", token, category).Code)
}

func (suite *CabinetTestSuite) TestGalleryUploadSkipsRejectedFiles() {
	t := suite.T()
	testutil.CreateCompany(t, suite.api.db, suite.owner, "Neva Motors")

	body, contentType := testutil.MultipartBody(t, nil, map[string][]testutil.NamedFile{
		"images": {
			{Name: "front.jpg", Content: testutil.JPEG},
			{Name: "virus.exe", Content: testutil.ELF},
		},
	})
	w := suite.api.do(request{
		method:      http.MethodPost,
		path:        "/api/cabinet/gallery",
		token:       testutil.Token(t, suite.owner),
		body:        body,
		contentType: contentType,
	})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	var result struct {
		Count   int `json:"count"`
		Skipped []struct {
			Name string `json:"name"`
		} `json:"skipped"`
	}
	decode(t, w, &result)
	suite.Equal(1, result.Count)
	suite.Require().Len(result.Skipped, 1)
	suite.Equal("virus.exe", result.Skipped[0].Name)
}

func (suite *CabinetTestSuite) TestAdminExportWorkbook() {
	t := suite.T()
	req := request{method: http.MethodGet, path: "/api/admin/export/users", token: testutil.Token(t, suite.admin)}
	w := suite.api.do(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	suite.Contains(w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx files are zip archives
	suite.True(strings.HasPrefix(w.Body.String(), "PK"))
}

func (suite *CabinetTestSuite) TestAdminRoutesFollowStoredRole() {
	t := suite.T()
	token := testutil.Token(t, suite.admin)
	suite.Equal(http.StatusOK, suite.api.json(t, http.MethodGet, "/api/admin/users", token, nil).Code)

	suite.Require().NoError(suite.api.db.Model(suite.admin).Update("role", models.RoleClient).Error)
	suite.Equal(http.StatusForbidden, suite.api.json(t, http.MethodGet, "/api/admin/users", token, nil).Code)

	ownerToken := testutil.Token(t, suite.owner)
	suite.Require().NoError(suite.api.db.Model(suite.owner).Update("role", models.RoleAdmin).Error)
	suite.Equal(http.StatusOK, suite.api.json(t, http.MethodGet, "/api/admin/users", ownerToken, nil).Code)
}

func (suite *CabinetTestSuite) TestPages() {
	t := suite.T()
	w := suite.api.json(t, http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "healthy")

	suite.Equal(http.StatusNotFound, suite.api.json(t, http.MethodGet, "/api/nothing-here", "", nil).Code)
}

func TestCabinetTestSuite(t *testing.T) {
	suite.Run(t, new(CabinetTestSuite))
}
