// internal/services/company_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/models"
)

type CompanyService struct {
	db      *gorm.DB
	storage *StorageService
	search  *SearchService
	now     func() time.Time
}

type SaveCompanyRequest struct {
	Name         string `form:"name" validate:"required,min=2,max=255"`
	Description  string `form:"description" validate:"max=5000"`
	Email        string `form:"email" validate:"omitempty,email"`
	Phone        string `form:"phone" validate:"max=32"`
	Website      string `form:"website" validate:"max=255"`
	Address      string `form:"address"`
	Country      string `form:"country" validate:"max=100"`
	Languages    string `form:"languages"`
	DeliveryTime string `form:"delivery_time" validate:"max=255"`
	INN          string `form:"inn" validate:"omitempty,inn"`
	KPP          string `form:"kpp" validate:"omitempty,kpp"`
	OGRN         string `form:"ogrn" validate:"omitempty,ogrn"`
	LegalAddress string `form:"legal_address"`
	BankName     string `form:"bank_name" validate:"max=255"`
	BankAccount  string `form:"bank_account" validate:"omitempty,bank_account"`
	BankBIK      string `form:"bank_bik" validate:"omitempty,bik"`
	CorrAccount  string `form:"corr_account" validate:"omitempty,bank_account"`
}

type CompanyWithLogo struct {
	Company *models.Company `json:"company"`
	LogoURL *string         `json:"logo_url"`
}

type RatingSummary struct {
	Average      float64  `json:"average"`
	Count        int64    `json:"count"`
	Distribution [5]int64 `json:"distribution"` // 5 stars first
}

type ExporterProfile struct {
	*models.Company
	LogoURL *string       `json:"logo_url"`
	Rating  RatingSummary `json:"rating"`
}

func NewCompanyService(db *gorm.DB, storage *StorageService, search *SearchService) *CompanyService {
	return &CompanyService{db: db, storage: storage, search: search, now: time.Now}
}

func parseLanguages(raw string) models.StringList {
	seen := map[string]bool{}
	out := models.StringList{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[strings.ToLower(part)] {
			continue
		}
		seen[strings.ToLower(part)] = true
		out = append(out, part)
	}
	return out
}

func (r *SaveCompanyRequest) apply(company *models.Company) {
	company.Name = strings.TrimSpace(r.Name)
	company.Description = r.Description
	company.Email = strings.TrimSpace(r.Email)
	company.Phone = strings.TrimSpace(r.Phone)
	company.Website = strings.TrimSpace(r.Website)
	company.Address = r.Address
	company.Country = strings.TrimSpace(r.Country)
	company.Languages = parseLanguages(r.Languages)
	company.DeliveryTime = strings.TrimSpace(r.DeliveryTime)
	if company.DeliveryTime == "" {
		company.DeliveryTime = models.DefaultDeliveryTime
	}
	company.INN = r.INN
	company.KPP = r.KPP
	company.OGRN = r.OGRN
	company.LegalAddress = r.LegalAddress
	company.BankName = r.BankName
	company.BankAccount = r.BankAccount
	company.BankBIK = r.BankBIK
	company.CorrAccount = r.CorrAccount
}

func (s *CompanyService) logoOf(db *gorm.DB, companyID uuid.UUID) (*models.Image, error) {
	var logo models.Image
	err := db.Where("company_id = ? AND is_logo = ?", companyID, true).First(&logo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &logo, nil
}

// GetForUser returns the caller's company, or an empty result when the
// caller has none yet.
func (s *CompanyService) GetForUser(user *models.User) (*CompanyWithLogo, error) {
	result := &CompanyWithLogo{}
	if user.CompanyID == nil {
		return result, nil
	}

	var company models.Company
	if err := s.db.First(&company, "id = ?", *user.CompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	result.Company = &company

	logo, err := s.logoOf(s.db, company.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load logo: %w", err)
	}
	if logo != nil {
		result.LogoURL = &logo.URL
	}
	return result, nil
}

// Save creates the caller's company on first use, otherwise updates it.
// The optional logo replaces the current one.
func (s *CompanyService) Save(ctx context.Context, user *models.User, req *SaveCompanyRequest, logoFile *multipart.FileHeader) (*CompanyWithLogo, error) {
	var upload *UploadResult
	if logoFile != nil {
		var err error
		upload, err = s.storage.UploadFile(ctx, logoFile, s.storage.GetDefaultUploadOptions("logo"))
		if err != nil {
			return nil, err
		}
	}

	var company models.Company
	var replacedKey string

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if user.CompanyID == nil {
			req.apply(&company)
			company.Status = models.CompanyStatusPending
			company.OwnerID = &user.ID
			if err := tx.Create(&company).Error; err != nil {
				return fmt.Errorf("failed to create company: %w", err)
			}

			updates := map[string]interface{}{"company_id": company.ID}
			if user.Role == models.RoleClient {
				updates["role"] = models.RoleCompany
			}
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to link user to company: %w", err)
			}
		} else {
			if err := tx.First(&company, "id = ?", *user.CompanyID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCompanyNotFound
				}
				return err
			}
			req.apply(&company)
			if err := tx.Save(&company).Error; err != nil {
				return fmt.Errorf("failed to update company: %w", err)
			}
		}

		if upload == nil {
			return nil
		}

		logo, err := s.logoOf(tx, company.ID)
		if err != nil {
			return err
		}
		if logo != nil {
			replacedKey = logo.StorageKey
			return tx.Model(logo).Updates(map[string]interface{}{
				"url":         upload.URL,
				"storage_key": upload.Key,
				"mime_type":   upload.MimeType,
				"size":        upload.Size,
			}).Error
		}

		return tx.Create(&models.Image{
			CompanyID:  company.ID,
			URL:        upload.URL,
			StorageKey: upload.Key,
			IsLogo:     true,
			MimeType:   upload.MimeType,
			Size:       upload.Size,
		}).Error
	})
	if err != nil {
		if upload != nil {
			removeStored(ctx, s.storage, upload.Key)
		}
		return nil, err
	}

	if user.CompanyID == nil {
		user.CompanyID = &company.ID
		if user.Role == models.RoleClient {
			user.Role = models.RoleCompany
		}
	}
	removeStored(ctx, s.storage, replacedKey)
	s.Reindex(ctx, company.ID)

	result := &CompanyWithLogo{Company: &company}
	if logo, err := s.logoOf(s.db, company.ID); err == nil && logo != nil {
		result.LogoURL = &logo.URL
	}
	return result, nil
}

// Reindex pushes the company to the catalog index; failures only log.
func (s *CompanyService) Reindex(ctx context.Context, companyID uuid.UUID) {
	if !s.search.Enabled() {
		return
	}

	var company models.Company
	if err := s.db.Preload("Categories").First(&company, "id = ?", companyID).Error; err != nil {
		logrus.WithError(err).WithField("company_id", companyID).Warn("Failed to load company for indexing")
		return
	}
	if err := s.search.IndexCompany(ctx, &company); err != nil {
		logrus.WithError(err).WithField("company_id", companyID).Warn("Failed to index company")
	}
}

// GetExporter is the public company page. Inactive companies are visible
// only to their members and admins. Outside visits are counted.
func (s *CompanyService) GetExporter(id uuid.UUID, viewer *models.User, ipAddress string) (*ExporterProfile, error) {
	var company models.Company
	err := s.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Categories").
		First(&company, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	insider := viewer != nil && (viewer.IsAdmin() || viewer.BelongsTo(company.ID))
	if !company.IsActive() && !insider {
		return nil, ErrCompanyNotFound
	}

	profile := &ExporterProfile{Company: &company}
	for i := range company.Images {
		if company.Images[i].IsLogo {
			profile.LogoURL = &company.Images[i].URL
		}
	}

	rating, err := ratingSummary(s.db, company.ID)
	if err != nil {
		return nil, err
	}
	profile.Rating = rating

	if !insider {
		s.recordView(&company, viewer, ipAddress)
	}
	return profile, nil
}

func (s *CompanyService) recordView(company *models.Company, viewer *models.User, ipAddress string) {
	view := &models.CompanyView{CompanyID: company.ID, IPAddress: ipAddress, CreatedAt: s.now()}
	if viewer != nil {
		view.ViewerID = &viewer.ID
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(view).Error; err != nil {
			return err
		}
		return tx.Model(&models.Company{}).Where("id = ?", company.ID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	})
	if err != nil {
		logrus.WithError(err).WithField("company_id", company.ID).Warn("Failed to record company view")
		return
	}
	company.ViewCount++
}

func ratingSummary(db *gorm.DB, companyID uuid.UUID) (RatingSummary, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	if err := db.Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("company_id = ?", companyID).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return RatingSummary{}, fmt.Errorf("failed to summarise reviews: %w", err)
	}

	var summary RatingSummary
	var total int64
	for _, row := range rows {
		if row.Rating < 1 || row.Rating > 5 {
			continue
		}
		summary.Distribution[5-row.Rating] = row.Count
		summary.Count += row.Count
		total += int64(row.Rating) * row.Count
	}
	if summary.Count > 0 {
		summary.Average = float64(total) / float64(summary.Count)
	}
	return summary, nil
}
