// internal/handlers/analytics.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GET /cabinet/analytics?range=week|month|year
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.GetAnalytics(user, c.DefaultQuery("range", "week"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.NoCache(c)
	utils.SuccessResponse(c, analytics)
}
