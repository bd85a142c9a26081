// internal/services/search_service.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"

	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/models"
)

// SearchService keeps the public catalog index. Without a Meilisearch host
// every call is a no-op and the catalog falls back to SQL.
type SearchService struct {
	client *meilisearch.Client
	index  string
}

type CompanyDocument struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Country     string   `json:"country"`
	Languages   []string `json:"languages"`
	Categories  []string `json:"categories"`
	Status      string   `json:"status"`
}

type CompanySearchQuery struct {
	Search   string
	Country  string
	Category string
	Language string
	Limit    int
	Offset   int
}

func NewSearchService(cfg config.SearchConfig) *SearchService {
	if cfg.MeilisearchHost == "" {
		return &SearchService{}
	}

	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   cfg.MeilisearchHost,
		APIKey: cfg.MeilisearchAPIKey,
	})

	s := &SearchService{client: client, index: cfg.CompaniesIndex}
	if err := s.ensureIndex(); err != nil {
		logrus.WithError(err).Warn("Failed to prepare search index")
	}
	return s
}

func (s *SearchService) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *SearchService) ensureIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if _, err := s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"country", "languages", "categories", "status",
	}); err != nil {
		return fmt.Errorf("failed to update filterable attributes: %w", err)
	}

	if _, err := s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"name", "description",
	}); err != nil {
		return fmt.Errorf("failed to update searchable attributes: %w", err)
	}
	return nil
}

func companyDocument(company *models.Company) CompanyDocument {
	doc := CompanyDocument{
		ID:          company.ID.String(),
		Name:        company.Name,
		Description: company.Description,
		Country:     company.Country,
		Languages:   []string(company.Languages),
		Status:      string(company.Status),
	}
	for _, c := range company.Categories {
		doc.Categories = append(doc.Categories, c.Slug)
	}
	return doc
}

func (s *SearchService) IndexCompany(_ context.Context, company *models.Company) error {
	if !s.Enabled() {
		return nil
	}
	if _, err := s.client.Index(s.index).AddDocuments([]CompanyDocument{companyDocument(company)}, "id"); err != nil {
		return fmt.Errorf("failed to index company: %w", err)
	}
	return nil
}

func (s *SearchService) RemoveCompany(_ context.Context, id uuid.UUID) error {
	if !s.Enabled() {
		return nil
	}
	if _, err := s.client.Index(s.index).DeleteDocument(id.String()); err != nil {
		return fmt.Errorf("failed to remove company from index: %w", err)
	}
	return nil
}

// SearchCompanyIDs returns matching active company ids in relevance order.
func (s *SearchService) SearchCompanyIDs(_ context.Context, q CompanySearchQuery) ([]uuid.UUID, int64, error) {
	if !s.Enabled() {
		return nil, 0, nil
	}

	filters := []string{"status = " + strconv.Quote(string(models.CompanyStatusActive))}
	if q.Country != "" {
		filters = append(filters, "country = "+strconv.Quote(q.Country))
	}
	if q.Category != "" {
		filters = append(filters, "categories = "+strconv.Quote(q.Category))
	}
	if q.Language != "" {
		filters = append(filters, "languages = "+strconv.Quote(q.Language))
	}

	result, err := s.client.Index(s.index).Search(q.Search, &meilisearch.SearchRequest{
		Filter:               strings.Join(filters, " AND "),
		Limit:                int64(q.Limit),
		Offset:               int64(q.Offset),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(result.Hits))
	for _, hit := range result.Hits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		raw, _ := doc["id"].(string)
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, result.EstimatedTotalHits, nil
}
