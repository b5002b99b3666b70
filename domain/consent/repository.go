package consent

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=consent

import (
	"context"
	"errors"

	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"gorm.io/gorm"
)

type ConsentRepository interface {
	Create(ctx context.Context, record *models.ConsentRecord) error
	FindLatest(ctx context.Context, visitorID string) (*models.ConsentRecord, error)
}

type consentRepository struct {
	db *gorm.DB
}

func NewConsentRepository(db *gorm.DB) ConsentRepository {
	return &consentRepository{db: db}
}

func (r *consentRepository) Create(ctx context.Context, record *models.ConsentRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return apperrors.NewDatabaseError("unable to store consent", err)
	}
	return nil
}

func (r *consentRepository) FindLatest(ctx context.Context, visitorID string) (*models.ConsentRecord, error) {
	var record models.ConsentRecord

	err := r.db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Order("created_at DESC").
		Order("id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("no consent recorded for this visitor", err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch consent", err)
	}

	return &record, nil
}
