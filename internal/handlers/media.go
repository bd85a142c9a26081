// internal/handlers/media.go
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

// maxMultipartMemory bounds the in-memory part of a parsed upload form;
// larger parts spill to temporary files.
const maxMultipartMemory = 32 << 20

type MediaHandler struct {
	documentService *services.DocumentService
	galleryService  *services.GalleryService
}

func NewMediaHandler(documentService *services.DocumentService, galleryService *services.GalleryService) *MediaHandler {
	return &MediaHandler{
		documentService: documentService,
		galleryService:  galleryService,
	}
}

// GET /cabinet/documents
func (h *MediaHandler) ListDocuments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	documents, err := h.documentService.List(user)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, documents)
}

// POST /cabinet/documents (multipart "file" and "name")
func (h *MediaHandler) UploadDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyUploadFileRequired), nil)
		return
	}

	document, err := h.documentService.Upload(c.Request.Context(), user, c.PostForm("name"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyDocumentUploaded),
		"document": document,
	})
}

// DELETE /cabinet/documents/:id
func (h *MediaHandler) DeleteDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyDocumentDeleted),
	})
}

// GET /cabinet/gallery
func (h *MediaHandler) ListImages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	images, err := h.galleryService.List(user)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, images)
}

// POST /cabinet/gallery (multipart, repeated "images")
func (h *MediaHandler) UploadImages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "images"), err.Error())
		return
	}

	var files []*multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil {
		files = form.File["images"]
	}

	result, err := h.galleryService.Upload(c.Request.Context(), user, files)
	if result != nil {
		for i := range result.Skipped {
			result.Skipped[i].Reason = i18n.T(lang, result.Skipped[i].Reason)
		}
	}
	if err != nil {
		if errors.Is(err, services.ErrNoImagesAccepted) && result != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyImageNoneAccepted), result.Skipped)
			return
		}
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyImagesUploaded),
		"images":  result.Images,
		"count":   result.Count,
		"skipped": result.Skipped,
	})
}

// DELETE /cabinet/gallery/:id
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.galleryService.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyImageDeleted),
	})
}
