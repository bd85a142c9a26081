// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GET /cabinet/reviews
func (h *ReviewHandler) ListCompanyReviews(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListForCompany(user)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, reviews)
}

// POST /cabinet/reviews/:id/response
func (h *ReviewHandler) Respond(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req services.RespondReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Respond(user, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewResponded),
		"review":  review,
	})
}

// GET /exporters/:id/reviews
func (h *ReviewHandler) ListPublic(c *gin.Context) {
	companyID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	reviews, summary, err := h.reviewService.ListPublic(companyID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"reviews": reviews,
		"rating":  summary,
	})
}

// POST /exporters/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	companyID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req services.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(user, companyID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewCreated),
		"review":  review,
	})
}
