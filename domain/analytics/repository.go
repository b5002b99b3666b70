package analytics

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=analytics

import (
	"context"
	"time"

	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepository interface {
	CreateEvent(ctx context.Context, event *models.AnalyticsEvent) error

	// Rollup reads over [start, end).
	CountEvents(ctx context.Context, name string, start, end time.Time) (int64, error)
	CountDistinctVisitors(ctx context.Context, start, end time.Time) (int64, error)
	CountLeads(ctx context.Context, start, end time.Time, minScore int) (int64, error)
	CountContacts(ctx context.Context, start, end time.Time) (int64, error)
	CountSubscribers(ctx context.Context, start, end time.Time) (int64, error)
	// WebVitalProperties returns the raw properties JSON of every web_vital event.
	WebVitalProperties(ctx context.Context, start, end time.Time) ([]string, error)

	UpsertDailyMetrics(ctx context.Context, metrics []models.DailyMetric) error
	ListDailyMetrics(ctx context.Context, from, to string) ([]models.DailyMetric, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CreateEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return apperrors.NewDatabaseError("unable to store analytics event", err)
	}
	return nil
}

func (r *analyticsRepository) count(ctx context.Context, model any, what string, build func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	if err := build(r.db.WithContext(ctx).Model(model)).Count(&total).Error; err != nil {
		return 0, apperrors.NewDatabaseError("unable to count "+what, err)
	}
	return total, nil
}

func (r *analyticsRepository) CountEvents(ctx context.Context, name string, start, end time.Time) (int64, error) {
	return r.count(ctx, &models.AnalyticsEvent{}, "events", func(q *gorm.DB) *gorm.DB {
		return q.Where("name = ? AND occurred_at >= ? AND occurred_at < ?", name, start, end)
	})
}

func (r *analyticsRepository) CountDistinctVisitors(ctx context.Context, start, end time.Time) (int64, error) {
	return r.count(ctx, &models.AnalyticsEvent{}, "visitors", func(q *gorm.DB) *gorm.DB {
		return q.Distinct("distinct_id").
			Where("name = ? AND occurred_at >= ? AND occurred_at < ?", models.EventPageView, start, end)
	})
}

func (r *analyticsRepository) CountLeads(ctx context.Context, start, end time.Time, minScore int) (int64, error) {
	return r.count(ctx, &models.Lead{}, "leads", func(q *gorm.DB) *gorm.DB {
		return q.Where("created_at >= ? AND created_at < ? AND score >= ?", start, end, minScore)
	})
}

func (r *analyticsRepository) CountContacts(ctx context.Context, start, end time.Time) (int64, error) {
	return r.count(ctx, &models.Contact{}, "contacts", func(q *gorm.DB) *gorm.DB {
		return q.Where("created_at >= ? AND created_at < ?", start, end)
	})
}

func (r *analyticsRepository) CountSubscribers(ctx context.Context, start, end time.Time) (int64, error) {
	return r.count(ctx, &models.NewsletterSubscriber{}, "subscribers", func(q *gorm.DB) *gorm.DB {
		return q.Where("subscribed_at >= ? AND subscribed_at < ?", start, end)
	})
}

func (r *analyticsRepository) WebVitalProperties(ctx context.Context, start, end time.Time) ([]string, error) {
	var properties []string
	err := r.db.WithContext(ctx).
		Model(&models.AnalyticsEvent{}).
		Where("name = ? AND occurred_at >= ? AND occurred_at < ?", models.EventWebVital, start, end).
		Pluck("properties", &properties).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to load web vitals", err)
	}
	return properties, nil
}

func (r *analyticsRepository) UpsertDailyMetrics(ctx context.Context, metrics []models.DailyMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "metric"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&metrics).Error
	if err != nil {
		return apperrors.NewDatabaseError("unable to store daily metrics", err)
	}
	return nil
}

func (r *analyticsRepository) ListDailyMetrics(ctx context.Context, from, to string) ([]models.DailyMetric, error) {
	var metrics []models.DailyMetric
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Order("metric ASC").
		Find(&metrics).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch daily metrics", err)
	}
	return metrics, nil
}
