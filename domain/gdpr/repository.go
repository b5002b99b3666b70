package gdpr

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=gdpr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"gorm.io/gorm"
)

type GDPRRepository interface {
	CreateRequest(ctx context.Context, request *models.GDPRRequest) error
	FindByToken(ctx context.Context, token string) (*models.GDPRRequest, error)
	SaveRequest(ctx context.Context, request *models.GDPRRequest) error
	ListRequests(ctx context.Context, status string, limit, offset int) ([]models.GDPRRequest, int64, error)

	// Export reads. Each one is independent so they can run concurrently.
	FindContacts(ctx context.Context, email string) ([]models.Contact, error)
	FindLeads(ctx context.Context, email string) ([]models.Lead, error)
	// FindSubscriber returns nil without error when the address never subscribed.
	FindSubscriber(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	FindConsentRecords(ctx context.Context, email string) ([]models.ConsentRecord, error)
	FindAnalyticsEvents(ctx context.Context, email string) ([]models.AnalyticsEvent, error)
	FindEnrollments(ctx context.Context, email string) ([]models.SequenceEnrollment, error)

	// Erase hard-deletes every row carrying email in one transaction and
	// returns the number of rows removed per table. Privacy request rows are
	// kept as an audit trail with the address pseudonymised and the IP dropped.
	Erase(ctx context.Context, email string) (map[string]int64, error)
}

type gdprRepository struct {
	db *gorm.DB
}

func NewGDPRRepository(db *gorm.DB) GDPRRepository {
	return &gdprRepository{db: db}
}

func (r *gdprRepository) CreateRequest(ctx context.Context, request *models.GDPRRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return apperrors.NewDatabaseError("unable to store privacy request", err)
	}
	return nil
}

func (r *gdprRepository) FindByToken(ctx context.Context, token string) (*models.GDPRRequest, error) {
	var request models.GDPRRequest

	if err := r.db.WithContext(ctx).Where("verification_token = ?", token).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewRequestNotFoundError(err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch privacy request", err)
	}

	return &request, nil
}

func (r *gdprRepository) SaveRequest(ctx context.Context, request *models.GDPRRequest) error {
	if err := r.db.WithContext(ctx).Save(request).Error; err != nil {
		return apperrors.NewDatabaseError("unable to update privacy request", err)
	}
	return nil
}

func (r *gdprRepository) ListRequests(ctx context.Context, status string, limit, offset int) ([]models.GDPRRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.GDPRRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to count privacy requests", err)
	}

	var requests []models.GDPRRequest
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&requests).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to fetch privacy requests", err)
	}

	return requests, total, nil
}

func (r *gdprRepository) FindContacts(ctx context.Context, email string) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.db.WithContext(ctx).Where("email = ?", email).Order("created_at ASC").Find(&contacts).Error; err != nil {
		return nil, apperrors.NewDatabaseError("failed to export contacts", err)
	}
	return contacts, nil
}

func (r *gdprRepository) FindLeads(ctx context.Context, email string) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.WithContext(ctx).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("email = ?", email).
		Find(&leads).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to export leads", err)
	}
	return leads, nil
}

func (r *gdprRepository) FindSubscriber(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("failed to export newsletter subscription", err)
	}
	return &subscriber, nil
}

func (r *gdprRepository) FindConsentRecords(ctx context.Context, email string) ([]models.ConsentRecord, error) {
	var records []models.ConsentRecord
	if err := r.db.WithContext(ctx).Where("email = ?", email).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, apperrors.NewDatabaseError("failed to export consent records", err)
	}
	return records, nil
}

func (r *gdprRepository) FindAnalyticsEvents(ctx context.Context, email string) ([]models.AnalyticsEvent, error) {
	var events []models.AnalyticsEvent
	if err := r.db.WithContext(ctx).Where("email = ?", email).Order("occurred_at ASC").Find(&events).Error; err != nil {
		return nil, apperrors.NewDatabaseError("failed to export analytics events", err)
	}
	return events, nil
}

func (r *gdprRepository) FindEnrollments(ctx context.Context, email string) ([]models.SequenceEnrollment, error) {
	var enrollments []models.SequenceEnrollment
	if err := r.db.WithContext(ctx).Where("email = ?", email).Order("created_at ASC").Find(&enrollments).Error; err != nil {
		return nil, apperrors.NewDatabaseError("failed to export sequence enrollments", err)
	}
	return enrollments, nil
}

func (r *gdprRepository) Erase(ctx context.Context, email string) (map[string]int64, error) {
	deleted := make(map[string]int64, 8)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var leadIDs []uint
		if err := tx.Unscoped().Model(&models.Lead{}).Where("email = ?", email).Pluck("id", &leadIDs).Error; err != nil {
			return err
		}

		if len(leadIDs) > 0 {
			result := tx.Where("lead_id IN ?", leadIDs).Delete(&models.LeadNote{})
			if result.Error != nil {
				return result.Error
			}
			deleted[TableLeadNotes] = result.RowsAffected

			result = tx.Where("lead_id IN ?", leadIDs).Delete(&models.LeadActivity{})
			if result.Error != nil {
				return result.Error
			}
			deleted[TableLeadActivities] = result.RowsAffected
		}

		byEmail := []struct {
			table string
			model any
		}{
			{TableContacts, &models.Contact{}},
			{TableLeads, &models.Lead{}},
			{TableNewsletterSubscribers, &models.NewsletterSubscriber{}},
			{TableSequenceEnrollments, &models.SequenceEnrollment{}},
			{TableConsentRecords, &models.ConsentRecord{}},
			{TableAnalyticsEvents, &models.AnalyticsEvent{}},
		}
		for _, target := range byEmail {
			result := tx.Unscoped().Where("email = ?", email).Delete(target.model)
			if result.Error != nil {
				return result.Error
			}
			deleted[target.table] = result.RowsAffected
		}

		return tx.Model(&models.GDPRRequest{}).
			Where("email = ?", email).
			Updates(map[string]interface{}{
				"email":      PseudonymizeEmail(email),
				"ip_address": "",
			}).Error
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to erase personal data", err)
	}

	return deleted, nil
}

// PseudonymizeEmail replaces an erased address with a stable stand-in, so
// repeated requests from one person still group together in the audit trail.
func PseudonymizeEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return "erased-" + hex.EncodeToString(sum[:12]) + "@erased.invalid"
}
