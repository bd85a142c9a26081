// internal/handlers/pages.go
package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/utils"
)

const Version = "1.0.0"

// GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": Version,
	})
}

// GET /api
func APIStatus(c *gin.Context) {
	utils.NoCache(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type SPAHandler struct {
	staticDir string
}

func NewSPAHandler(staticDir string) *SPAHandler {
	return &SPAHandler{staticDir: staticDir}
}

// Serve answers unmatched routes. GET requests outside /api get a static
// asset when one exists, otherwise index.html; everything else is 404.
func (h *SPAHandler) Serve(c *gin.Context) {
	path := c.Request.URL.Path
	if h.staticDir == "" || c.Request.Method != http.MethodGet || path == "/api" || strings.HasPrefix(path, "/api/") {
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", "", nil)
		return
	}

	clean := filepath.Clean("/" + path)
	if clean != "/" {
		asset := filepath.Join(h.staticDir, filepath.FromSlash(clean))
		if info, err := os.Stat(asset); err == nil && !info.IsDir() {
			c.File(asset)
			return
		}
	}

	c.File(filepath.Join(h.staticDir, "index.html"))
}
