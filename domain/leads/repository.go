package leads

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=leads

import (
	"context"
	"errors"
	"strings"

	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeadFilter struct {
	Status   string
	Source   string
	MinScore int
	Query    string
	Limit    int
	Offset   int
}

type LeadRepository interface {
	// FindByEmail looks a lead up by its normalized email.
	FindByEmail(ctx context.Context, email string) (*models.Lead, error)
	// FindByID loads a lead with its notes and activities, oldest first.
	FindByID(ctx context.Context, id uint) (*models.Lead, error)
	// Create inserts a lead and its first activity in one transaction.
	Create(ctx context.Context, lead *models.Lead, activity *models.LeadActivity) (*models.Lead, error)
	// Save persists lead columns and appends activities in one transaction.
	Save(ctx context.Context, lead *models.Lead, activities []models.LeadActivity) error
	// List returns one page of leads matching filter and the total match count.
	List(ctx context.Context, filter LeadFilter) ([]models.Lead, int64, error)
	// Stats aggregates the pipeline; leads scoring at or above threshold count as high value.
	Stats(ctx context.Context, threshold int) (*LeadStats, error)
	// AddActivity appends one timeline entry and bumps last_activity_at.
	AddActivity(ctx context.Context, activity *models.LeadActivity) error
	// AddNote stores a note together with its activity.
	AddNote(ctx context.Context, note *models.LeadNote, activity *models.LeadActivity) error
	// Delete hard-deletes a lead with its notes and activities.
	Delete(ctx context.Context, id uint) error
}

type leadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	var lead models.Lead

	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewLeadNotFoundError(err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch lead", err)
	}

	return &lead, nil
}

func (r *leadRepository) FindByID(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead

	err := r.db.WithContext(ctx).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&lead, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewLeadNotFoundError(err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch lead", err)
	}

	return &lead, nil
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead, activity *models.LeadActivity) (*models.Lead, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(lead).Error; err != nil {
			return err
		}
		if activity == nil {
			return nil
		}
		activity.LeadID = lead.ID
		return tx.Create(activity).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError("lead with this email already exists", err)
		}
		return nil, apperrors.NewDatabaseError("unable to create lead", err)
	}

	return lead, nil
}

func (r *leadRepository) Save(ctx context.Context, lead *models.Lead, activities []models.LeadActivity) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(lead).Error; err != nil {
			return err
		}
		for i := range activities {
			activities[i].LeadID = lead.ID
		}
		if len(activities) == 0 {
			return nil
		}
		return tx.Create(&activities).Error
	})
	if err != nil {
		return apperrors.NewDatabaseError("unable to update lead", err)
	}

	return nil
}

func (r *leadRepository) List(ctx context.Context, filter LeadFilter) ([]models.Lead, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Lead{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.MinScore > 0 {
		query = query.Where("score >= ?", filter.MinScore)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(company) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to count leads", err)
	}

	var leads []models.Lead
	err := query.
		Order("score DESC").
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&leads).Error
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to fetch leads", err)
	}

	return leads, total, nil
}

type groupCount struct {
	Label string
	Total int64
}

func (r *leadRepository) Stats(ctx context.Context, threshold int) (*LeadStats, error) {
	db := r.db.WithContext(ctx)
	stats := &LeadStats{
		ByStatus:  make(map[string]int64, len(models.LeadStatuses)),
		BySource:  make(map[string]int64),
		Threshold: threshold,
	}
	for _, s := range models.LeadStatuses {
		stats.ByStatus[s] = 0
	}

	if err := db.Model(&models.Lead{}).Count(&stats.Total).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to count leads", err)
	}

	var byStatus []groupCount
	if err := db.Model(&models.Lead{}).Select("status AS label, COUNT(*) AS total").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to aggregate leads by status", err)
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Label] = row.Total
	}

	var bySource []groupCount
	if err := db.Model(&models.Lead{}).Select("source AS label, COUNT(*) AS total").Group("source").Scan(&bySource).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to aggregate leads by source", err)
	}
	for _, row := range bySource {
		stats.BySource[row.Label] = row.Total
	}

	if err := db.Model(&models.Lead{}).Where("score >= ?", threshold).Count(&stats.HighValue).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to count high-value leads", err)
	}

	if stats.Total > 0 {
		var avg float64
		if err := db.Model(&models.Lead{}).Select("COALESCE(AVG(score), 0)").Row().Scan(&avg); err != nil {
			return nil, apperrors.NewDatabaseError("unable to average lead score", err)
		}
		stats.AverageScore = avg
	}

	return stats, nil
}

func (r *leadRepository) AddActivity(ctx context.Context, activity *models.LeadActivity) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Lead{}).Where("id = ?", activity.LeadID).Update("last_activity_at", activity.CreatedAt)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewLeadNotFoundError(err)
		}
		return apperrors.NewDatabaseError("unable to record lead activity", err)
	}

	return nil
}

func (r *leadRepository) AddNote(ctx context.Context, note *models.LeadNote, activity *models.LeadActivity) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(note).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Lead{}).Where("id = ?", note.LeadID).Update("last_activity_at", note.CreatedAt).Error; err != nil {
			return err
		}
		if activity == nil {
			return nil
		}
		activity.LeadID = note.LeadID
		return tx.Create(activity).Error
	})
	if err != nil {
		return apperrors.NewDatabaseError("unable to add lead note", err)
	}

	return nil
}

func (r *leadRepository) Delete(ctx context.Context, id uint) error {
	var affected int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Contact{}).Where("lead_id = ?", id).Update("lead_id", nil).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Delete(&models.Lead{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return apperrors.NewDatabaseError("unable to delete lead", err)
	}

	if affected == 0 {
		return NewLeadNotFoundError(nil)
	}

	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
