// internal/services/category_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

type CategoryService struct {
	db        *gorm.DB
	companies *CompanyService
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

func NewCategoryService(db *gorm.DB, companies *CompanyService) *CategoryService {
	return &CategoryService{db: db, companies: companies}
}

func (s *CategoryService) ListForCompany(caller *models.User) ([]models.Category, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := s.db.Where("company_id = ?", companyID).Order("created_at DESC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListPublic returns every category for catalog filters.
func (s *CategoryService) ListPublic() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// slugFor derives the slug and checks it is free. Deleted categories are
// removed for good, so the unique index only ever sees live rows.
func (s *CategoryService) slugFor(name string, exclude uuid.UUID) (string, error) {
	slug := utils.Slugify(name)
	if slug == "" {
		return "", ErrSlugEmpty
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("slug = ? AND id <> ?", slug, exclude).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return "", ErrSlugTaken
	}
	return slug, nil
}

// Create adds a category to the caller's company. Admins outside a company
// create platform-wide categories.
func (s *CategoryService) Create(ctx context.Context, caller *models.User, req *CategoryRequest) (*models.Category, error) {
	var companyID *uuid.UUID
	if caller.CompanyID != nil {
		companyID = caller.CompanyID
	} else if !caller.IsAdmin() {
		return nil, ErrCompanyNotFound
	}

	slug, err := s.slugFor(req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		CompanyID:   companyID,
	}
	if err := s.db.Create(category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.reindex(ctx, category)
	return category, nil
}

func (s *CategoryService) authorized(caller *models.User, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if category.CompanyID == nil {
		if !caller.IsAdmin() {
			return nil, ErrCategoryDenied
		}
		return &category, nil
	}
	if checkOwnership(caller, *category.CompanyID) != nil {
		return nil, ErrCategoryDenied
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, caller *models.User, id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	category, err := s.authorized(caller, id)
	if err != nil {
		return nil, err
	}

	slug, err := s.slugFor(req.Name, category.ID)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Slug = slug
	category.Description = req.Description
	if err := s.db.Save(category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.reindex(ctx, category)
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	category, err := s.authorized(caller, id)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(category).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.reindex(ctx, category)
	return nil
}

func (s *CategoryService) reindex(ctx context.Context, category *models.Category) {
	if category.CompanyID != nil && s.companies != nil {
		s.companies.Reindex(ctx, *category.CompanyID)
	}
}
