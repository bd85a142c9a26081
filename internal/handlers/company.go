// internal/handlers/company.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/middleware"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

type CompanyHandler struct {
	companyService *services.CompanyService
}

func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// GET /cabinet/company
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.companyService.GetForUser(user)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.NoCache(c)
	utils.SuccessResponse(c, result)
}

// POST /cabinet/company (multipart, optional "logo" file)
func (h *CompanyHandler) SaveCompany(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.SaveCompanyRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	// A missing logo part is not an error; any other multipart failure is.
	logo, err := c.FormFile("logo")
	if err != nil && err != http.ErrMissingFile {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "logo"), err.Error())
		return
	}

	result, err := h.companyService.Save(c.Request.Context(), user, &req, logo)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCompanySaved),
		"company":  result.Company,
		"logo_url": result.LogoURL,
	})
}

// GET /exporters/:id
func (h *CompanyHandler) GetExporter(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	profile, err := h.companyService.GetExporter(id, middleware.CurrentUser(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}
