// internal/services/catalog_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

type CatalogService struct {
	db     *gorm.DB
	search *SearchService
}

type CatalogQuery struct {
	Country  string
	Category string
	Language string
	utils.PaginationParams
}

type CatalogEntry struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Country      string            `json:"country"`
	Languages    models.StringList `json:"languages"`
	DeliveryTime string            `json:"delivery_time"`
	LogoURL      *string           `json:"logo_url"`
	Rating       float64           `json:"rating"`
	ReviewCount  int64             `json:"review_count"`
}

func NewCatalogService(db *gorm.DB, search *SearchService) *CatalogService {
	return &CatalogService{db: db, search: search}
}

// SearchCompanies lists active companies. The search index answers when it
// is configured and reachable, SQL otherwise.
func (s *CatalogService) SearchCompanies(ctx context.Context, q CatalogQuery) ([]CatalogEntry, int64, error) {
	if s.search.Enabled() {
		companies, total, err := s.searchIndex(ctx, q)
		if err == nil {
			entries, err := s.entries(companies)
			return entries, total, err
		}
		logrus.WithError(err).Warn("Catalog index query failed, falling back to SQL")
	}

	companies, total, err := s.searchSQL(q)
	if err != nil {
		return nil, 0, err
	}
	entries, err := s.entries(companies)
	return entries, total, err
}

func (s *CatalogService) searchIndex(ctx context.Context, q CatalogQuery) ([]models.Company, int64, error) {
	ids, total, err := s.search.SearchCompanyIDs(ctx, CompanySearchQuery{
		Search:   q.Search,
		Country:  q.Country,
		Category: q.Category,
		Language: q.Language,
		Limit:    q.Limit,
		Offset:   q.Offset(),
	})
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, total, nil
	}

	var found []models.Company
	if err := s.db.Where("id IN ? AND status = ?", ids, models.CompanyStatusActive).Find(&found).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load companies: %w", err)
	}

	byID := make(map[uuid.UUID]models.Company, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	ordered := make([]models.Company, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, total, nil
}

func (s *CatalogService) searchSQL(q CatalogQuery) ([]models.Company, int64, error) {
	query := s.db.Model(&models.Company{}).Where("status = ?", models.CompanyStatusActive)

	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if q.Country != "" {
		query = query.Where("LOWER(country) = ?", strings.ToLower(q.Country))
	}
	if q.Category != "" {
		query = query.Where("id IN (?)", s.db.Model(&models.Category{}).Select("company_id").Where("slug = ?", q.Category))
	}
	if q.Language != "" {
		if s.db.Dialector.Name() == "postgres" {
			query = query.Where("? = ANY(languages)", q.Language)
		} else {
			query = query.Where("languages LIKE ?", "%"+q.Language+"%")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	var companies []models.Company
	query = utils.ApplySort(query, q.PaginationParams, []string{"name", "created_at", "view_count"})
	if err := utils.ApplyPagination(query, q.PaginationParams).Find(&companies).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, total, nil
}

// entries attaches logos and rating figures in two batch queries.
func (s *CatalogService) entries(companies []models.Company) ([]CatalogEntry, error) {
	entries := make([]CatalogEntry, 0, len(companies))
	if len(companies) == 0 {
		return entries, nil
	}

	ids := make([]uuid.UUID, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
	}

	var logos []models.Image
	if err := s.db.Where("company_id IN ? AND is_logo = ?", ids, true).Find(&logos).Error; err != nil {
		return nil, fmt.Errorf("failed to load logos: %w", err)
	}
	logoByCompany := make(map[uuid.UUID]string, len(logos))
	for _, l := range logos {
		logoByCompany[l.CompanyID] = l.URL
	}

	var ratings []struct {
		CompanyID uuid.UUID
		Average   float64
		Count     int64
	}
	if err := s.db.Model(&models.Review{}).
		Select("company_id, AVG(rating) AS average, COUNT(*) AS count").
		Where("company_id IN ?", ids).
		Group("company_id").
		Scan(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	ratingByCompany := make(map[uuid.UUID]int, len(ratings))
	for i, r := range ratings {
		ratingByCompany[r.CompanyID] = i
	}

	for _, c := range companies {
		entry := CatalogEntry{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			Country:      c.Country,
			Languages:    c.Languages,
			DeliveryTime: c.DeliveryTime,
		}
		if url, ok := logoByCompany[c.ID]; ok {
			url := url
			entry.LogoURL = &url
		}
		if i, ok := ratingByCompany[c.ID]; ok {
			entry.Rating = ratings[i].Average
			entry.ReviewCount = ratings[i].Count
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
