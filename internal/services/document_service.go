// internal/services/document_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/models"
)

type DocumentService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewDocumentService(db *gorm.DB, storage *StorageService) *DocumentService {
	return &DocumentService{db: db, storage: storage}
}

func (s *DocumentService) List(caller *models.User) ([]models.Document, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}

	var documents []models.Document
	if err := s.db.Where("company_id = ?", companyID).Order("created_at DESC").Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}

func (s *DocumentService) Upload(ctx context.Context, caller *models.User, name string, file *multipart.FileHeader) (*models.Document, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrDocumentNameRequired
	}
	if file == nil {
		return nil, ErrFileRequired
	}

	upload, err := s.storage.UploadFile(ctx, file, s.storage.GetDefaultUploadOptions("documents"))
	if err != nil {
		return nil, err
	}

	document := &models.Document{
		CompanyID:  companyID,
		Name:       name,
		URL:        upload.URL,
		StorageKey: upload.Key,
		MimeType:   upload.MimeType,
		Size:       upload.Size,
	}
	if err := s.db.Create(document).Error; err != nil {
		removeStored(ctx, s.storage, upload.Key)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return document, nil
}

func (s *DocumentService) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	var document models.Document
	if err := s.db.First(&document, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if err := checkOwnership(caller, document.CompanyID); err != nil {
		return err
	}

	if err := s.db.Delete(&document).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	removeStored(ctx, s.storage, document.StorageKey)
	return nil
}

func removeStored(ctx context.Context, storage *StorageService, key string) {
	if key == "" {
		return
	}
	if err := storage.DeleteFile(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to remove stored file")
	}
}
