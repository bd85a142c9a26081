// internal/services/gallery_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/models"
)

type GalleryService struct {
	db      *gorm.DB
	storage *StorageService
}

type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type GalleryUploadResult struct {
	Images  []models.Image `json:"images"`
	Count   int            `json:"count"`
	Skipped []SkippedFile  `json:"skipped,omitempty"`
}

func NewGalleryService(db *gorm.DB, storage *StorageService) *GalleryService {
	return &GalleryService{db: db, storage: storage}
}

func (s *GalleryService) List(caller *models.User) ([]models.Image, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}

	var images []models.Image
	if err := s.db.Where("company_id = ?", companyID).
		Order("is_logo DESC, created_at DESC").
		Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// Upload stores every acceptable file. Rejected files are reported with the
// translation key of the reason; the call fails only when nothing was
// accepted. A storage or database failure leaves nothing behind: objects
// stored so far are removed and no rows are created.
func (s *GalleryService) Upload(ctx context.Context, caller *models.User, files []*multipart.FileHeader) (*GalleryUploadResult, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrFileRequired
	}

	result := &GalleryUploadResult{Images: []models.Image{}}
	options := s.storage.GetDefaultUploadOptions("gallery")

	for _, file := range files {
		upload, err := s.storage.UploadFile(ctx, file, options)
		if err != nil {
			var domainErr *Error
			if !errors.As(err, &domainErr) {
				s.discard(ctx, result.Images)
				return nil, err
			}
			result.Skipped = append(result.Skipped, SkippedFile{Name: file.Filename, Reason: domainErr.Key})
			continue
		}

		result.Images = append(result.Images, models.Image{
			CompanyID:  companyID,
			URL:        upload.URL,
			StorageKey: upload.Key,
			MimeType:   upload.MimeType,
			Size:       upload.Size,
		})
	}

	result.Count = len(result.Images)
	if result.Count == 0 {
		return result, ErrNoImagesAccepted
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		return tx.Create(&result.Images).Error
	})
	if err != nil {
		s.discard(ctx, result.Images)
		return nil, fmt.Errorf("failed to save images: %w", err)
	}
	return result, nil
}

func (s *GalleryService) discard(ctx context.Context, images []models.Image) {
	for _, image := range images {
		removeStored(ctx, s.storage, image.StorageKey)
	}
}

// Delete removes a gallery image. The logo is only replaced through the
// company form.
func (s *GalleryService) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	var image models.Image
	if err := s.db.First(&image, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	if err := checkOwnership(caller, image.CompanyID); err != nil {
		return err
	}
	if image.IsLogo {
		return ErrLogoDelete
	}

	if err := s.db.Delete(&image).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	removeStored(ctx, s.storage, image.StorageKey)
	return nil
}
