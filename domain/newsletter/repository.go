package newsletter

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=newsletter

import (
	"context"
	"errors"

	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"gorm.io/gorm"
)

type SubscriberRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	FindByToken(ctx context.Context, token string) (*models.NewsletterSubscriber, error)
	Create(ctx context.Context, subscriber *models.NewsletterSubscriber) error
	Save(ctx context.Context, subscriber *models.NewsletterSubscriber) error
	// List pages through subscribers, newest first. An empty status matches all.
	List(ctx context.Context, status string, limit, offset int) ([]models.NewsletterSubscriber, int64, error)
}

type subscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *subscriberRepository) FindByToken(ctx context.Context, token string) (*models.NewsletterSubscriber, error) {
	return r.findOne(ctx, "unsubscribe_token = ?", token)
}

func (r *subscriberRepository) findOne(ctx context.Context, query string, arg any) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber

	if err := r.db.WithContext(ctx).Where(query, arg).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewSubscriberNotFoundError(err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch subscriber", err)
	}

	return &subscriber, nil
}

func (r *subscriberRepository) Create(ctx context.Context, subscriber *models.NewsletterSubscriber) error {
	if err := r.db.WithContext(ctx).Create(subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("subscriber with this email already exists", err)
		}
		return apperrors.NewDatabaseError("unable to create subscriber", err)
	}
	return nil
}

func (r *subscriberRepository) Save(ctx context.Context, subscriber *models.NewsletterSubscriber) error {
	if err := r.db.WithContext(ctx).Save(subscriber).Error; err != nil {
		return apperrors.NewDatabaseError("unable to update subscriber", err)
	}
	return nil
}

func (r *subscriberRepository) List(ctx context.Context, status string, limit, offset int) ([]models.NewsletterSubscriber, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.NewsletterSubscriber{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to count subscribers", err)
	}

	var subscribers []models.NewsletterSubscriber
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&subscribers).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to fetch subscribers", err)
	}

	return subscribers, total, nil
}
