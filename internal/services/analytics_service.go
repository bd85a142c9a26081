// internal/services/analytics_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/models"
)

type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

type SeriesPoint struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type AnalyticsTotals struct {
	Views     int64 `json:"views"`
	Messages  int64 `json:"messages"`
	Reviews   int64 `json:"reviews"`
	Documents int64 `json:"documents"`
	Images    int64 `json:"images"`
	Employees int64 `json:"employees"`
}

type Analytics struct {
	Range    string          `json:"range"`
	Views    []SeriesPoint   `json:"views"`
	Messages []SeriesPoint   `json:"messages"`
	Reviews  RatingSummary   `json:"reviews"`
	Totals   AnalyticsTotals `json:"totals"`
}

// bucketing describes one analytics range: the number of points and how a
// timestamp maps onto a point.
type bucketing struct {
	points  int
	monthly bool
}

var analyticsRanges = map[string]bucketing{
	"week":  {points: 7},
	"month": {points: 30},
	"year":  {points: 12, monthly: true},
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

func (b bucketing) start(now time.Time) time.Time {
	now = now.UTC()
	if b.monthly {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, -(b.points - 1), 0)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -(b.points - 1))
}

func (b bucketing) label(t time.Time) string {
	if b.monthly {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

// series counts timestamps per point, oldest point first.
func (b bucketing) series(start time.Time, stamps []time.Time) []SeriesPoint {
	points := make([]SeriesPoint, b.points)
	index := make(map[string]int, b.points)
	for i := range points {
		var t time.Time
		if b.monthly {
			t = start.AddDate(0, i, 0)
		} else {
			t = start.AddDate(0, 0, i)
		}
		points[i].Label = b.label(t)
		index[points[i].Label] = i
	}

	for _, stamp := range stamps {
		if i, ok := index[b.label(stamp.UTC())]; ok {
			points[i].Value++
		}
	}
	return points
}

func (s *AnalyticsService) GetAnalytics(caller *models.User, rangeName string) (*Analytics, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}

	if rangeName == "" {
		rangeName = "week"
	}
	b, ok := analyticsRanges[rangeName]
	if !ok {
		return nil, ErrAnalyticsRange
	}
	start := b.start(s.now())

	views, err := s.timestamps(&models.CompanyView{}, companyID, start)
	if err != nil {
		return nil, err
	}
	messages, err := s.timestamps(&models.Message{}, companyID, start)
	if err != nil {
		return nil, err
	}

	reviews, err := ratingSummary(s.db, companyID)
	if err != nil {
		return nil, err
	}

	totals, err := s.totals(companyID)
	if err != nil {
		return nil, err
	}
	totals.Reviews = reviews.Count

	return &Analytics{
		Range:    rangeName,
		Views:    b.series(start, views),
		Messages: b.series(start, messages),
		Reviews:  reviews,
		Totals:   *totals,
	}, nil
}

func (s *AnalyticsService) timestamps(model interface{}, companyID uuid.UUID, since time.Time) ([]time.Time, error) {
	var stamps []time.Time
	if err := s.db.Model(model).
		Where("company_id = ? AND created_at >= ?", companyID, since).
		Pluck("created_at", &stamps).Error; err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}
	return stamps, nil
}

func (s *AnalyticsService) totals(companyID uuid.UUID) (*AnalyticsTotals, error) {
	totals := &AnalyticsTotals{}
	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&models.CompanyView{}, "company_id = ?", []interface{}{companyID}, &totals.Views},
		{&models.Message{}, "company_id = ?", []interface{}{companyID}, &totals.Messages},
		{&models.Document{}, "company_id = ?", []interface{}{companyID}, &totals.Documents},
		{&models.Image{}, "company_id = ? AND is_logo = ?", []interface{}{companyID, false}, &totals.Images},
		{&models.User{}, "company_id = ?", []interface{}{companyID}, &totals.Employees},
	}

	for _, c := range counts {
		if err := s.db.Model(c.model).Where(c.where, c.args...).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count analytics totals: %w", err)
		}
	}
	return totals, nil
}
