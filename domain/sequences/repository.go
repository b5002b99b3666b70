package sequences

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=sequences

import (
	"context"
	"errors"
	"time"

	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	// FindActive returns the active enrollment of email in sequence.
	FindActive(ctx context.Context, email, sequence string) (*models.SequenceEnrollment, error)
	FindByID(ctx context.Context, id string) (*models.SequenceEnrollment, error)
	Create(ctx context.Context, enrollment *models.SequenceEnrollment) error
	// SaveProgress writes step progress only while the enrollment is still
	// active; it reports false when a concurrent cancel got there first.
	SaveProgress(ctx context.Context, enrollment *models.SequenceEnrollment) (bool, error)
	// ListDue returns active enrollments due at now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.SequenceEnrollment, error)
	// CancelActive cancels every active enrollment of email.
	CancelActive(ctx context.Context, email string) (int64, error)
	// SubscriberState reports the newsletter status and unsubscribe token for
	// email; both are empty when the address never subscribed.
	SubscriberState(ctx context.Context, email string) (string, string, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) FindActive(ctx context.Context, email, sequence string) (*models.SequenceEnrollment, error) {
	var enrollment models.SequenceEnrollment

	err := r.db.WithContext(ctx).
		Where("email = ? AND sequence = ? AND status = ?", email, sequence, models.EnrollmentActive).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewEnrollmentNotFoundError(err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch enrollment", err)
	}

	return &enrollment, nil
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id string) (*models.SequenceEnrollment, error) {
	var enrollment models.SequenceEnrollment

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewEnrollmentNotFoundError(err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch enrollment", err)
	}

	return &enrollment, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.SequenceEnrollment) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("already enrolled in this sequence", err)
		}
		return apperrors.NewDatabaseError("unable to create enrollment", err)
	}
	return nil
}

func (r *enrollmentRepository) SaveProgress(ctx context.Context, enrollment *models.SequenceEnrollment) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SequenceEnrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, models.EnrollmentActive).
		Updates(map[string]interface{}{
			"current_step": enrollment.CurrentStep,
			"status":       enrollment.Status,
			"next_send_at": enrollment.NextSendAt,
			"last_sent_at": enrollment.LastSentAt,
			"last_error":   enrollment.LastError,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return false, apperrors.NewDatabaseError("unable to update enrollment", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *enrollmentRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.SequenceEnrollment, error) {
	var due []models.SequenceEnrollment

	err := r.db.WithContext(ctx).
		Where("status = ? AND next_send_at <= ?", models.EnrollmentActive, now).
		Order("next_send_at ASC").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch due enrollments", err)
	}

	return due, nil
}

func (r *enrollmentRepository) CancelActive(ctx context.Context, email string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SequenceEnrollment{}).
		Where("email = ? AND status = ?", email, models.EnrollmentActive).
		Updates(map[string]interface{}{
			"status":     models.EnrollmentCancelled,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, apperrors.NewDatabaseError("unable to cancel enrollments", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *enrollmentRepository) SubscriberState(ctx context.Context, email string) (string, string, error) {
	var subscriber models.NewsletterSubscriber

	err := r.db.WithContext(ctx).
		Select("status", "unsubscribe_token").
		Where("email = ?", email).
		First(&subscriber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", apperrors.NewDatabaseError("failed to fetch subscriber state", err)
	}

	return subscriber.Status, subscriber.UnsubscribeToken, nil
}
