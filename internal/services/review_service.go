// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/models"
)

type ReviewService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"required,min=3,max=5000"`
}

type RespondReviewRequest struct {
	Response string `json:"response" validate:"required,min=3,max=5000"`
}

func NewReviewService(db *gorm.DB, notifications *NotificationService) *ReviewService {
	return &ReviewService{db: db, notifications: notifications, now: time.Now}
}

func withAuthorName(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "image")
}

// ListForCompany returns reviews of the caller's company.
func (s *ReviewService) ListForCompany(caller *models.User) ([]models.Review, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}
	return s.list(companyID)
}

func (s *ReviewService) list(companyID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.Preload("Author", withAuthorName).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) Respond(caller *models.User, id uuid.UUID, req *RespondReviewRequest) (*models.Review, error) {
	var review models.Review
	if err := s.db.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if checkOwnership(caller, review.CompanyID) != nil {
		return nil, ErrReviewDenied
	}

	now := s.now()
	review.Response = strings.TrimSpace(req.Response)
	review.RespondedAt = &now
	if err := s.db.Model(&review).Updates(map[string]interface{}{
		"response":     review.Response,
		"responded_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	s.notifications.notifyBestEffort(s.notifications.Notify(
		[]uuid.UUID{review.AuthorID},
		models.NotificationTypeReviewResponse,
		L(i18n.KeyNotifyReviewResponseTitle),
		L(i18n.KeyNotifyReviewResponseText, review.Response),
		map[string]interface{}{"review_id": review.ID, "company_id": review.CompanyID},
	), "review_response")

	return &review, nil
}

func (s *ReviewService) activeCompany(id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := s.db.First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	if !company.IsActive() {
		return nil, ErrCompanyNotFound
	}
	return &company, nil
}

// ListPublic returns the reviews shown on an exporter page.
func (s *ReviewService) ListPublic(companyID uuid.UUID) ([]models.Review, RatingSummary, error) {
	if _, err := s.activeCompany(companyID); err != nil {
		return nil, RatingSummary{}, err
	}

	reviews, err := s.list(companyID)
	if err != nil {
		return nil, RatingSummary{}, err
	}

	summary, err := ratingSummary(s.db, companyID)
	if err != nil {
		return nil, RatingSummary{}, err
	}
	return reviews, summary, nil
}

// Create posts the author's single review of a company.
func (s *ReviewService) Create(author *models.User, companyID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	company, err := s.activeCompany(companyID)
	if err != nil {
		return nil, err
	}
	if author.BelongsTo(company.ID) {
		return nil, ErrReviewOwnCompany
	}

	var count int64
	if err := s.db.Model(&models.Review{}).
		Where("company_id = ? AND author_id = ?", company.ID, author.ID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrReviewDuplicate
	}

	review := &models.Review{
		CompanyID: company.ID,
		AuthorID:  author.ID,
		Rating:    req.Rating,
		Text:      strings.TrimSpace(req.Text),
	}
	if err := s.db.Create(review).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrReviewDuplicate
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	review.Author = &models.User{Name: author.Name, Image: author.Image}
	review.Author.ID = author.ID

	s.notifications.notifyBestEffort(s.notifications.NotifyCompany(
		company.ID, author.ID,
		models.NotificationTypeReview,
		L(i18n.KeyNotifyReviewTitle),
		L(i18n.KeyNotifyReviewText, author.Name, review.Rating),
		map[string]interface{}{"review_id": review.ID},
	), "review_created")

	return review, nil
}
