// internal/handlers/catalog.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

type CatalogHandler struct {
	catalogService  *services.CatalogService
	categoryService *services.CategoryService
}

func NewCatalogHandler(catalogService *services.CatalogService, categoryService *services.CategoryService) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		categoryService: categoryService,
	}
}

// GET /catalog?search=&country=&category=&language=&page=&limit=
func (h *CatalogHandler) SearchCompanies(c *gin.Context) {
	query := services.CatalogQuery{
		Country:          c.Query("country"),
		Category:         c.Query("category"),
		Language:         c.Query("language"),
		PaginationParams: utils.GetPaginationParams(c),
	}

	entries, total, err := h.catalogService.SearchCompanies(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(entries, total, query.PaginationParams)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListPublic()
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, categories)
}
