package contact

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=contact

import (
	"context"

	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	// LinkLead points a stored submission at the lead it fed.
	LinkLead(ctx context.Context, contactID, leadID uint) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return apperrors.NewDatabaseError("unable to store contact submission", err)
	}
	return nil
}

func (r *contactRepository) LinkLead(ctx context.Context, contactID, leadID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", contactID).
		Update("lead_id", leadID)

	if result.Error != nil {
		return apperrors.NewDatabaseError("unable to link contact to lead", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("contact not found", nil)
	}
	return nil
}
