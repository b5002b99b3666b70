package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/metrics"
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/internal/notify"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
)

const (
	statsCacheKey = "leads:stats"
	statsCacheTTL = 60 * time.Second
)

// Notifier fans a high-value lead out to the chat channels.
type Notifier interface {
	Enabled() bool
	Dispatch(ctx context.Context, n notify.LeadNotification) []notify.Result
}

// StatsCache is the subset of the shared cache used for dashboard stats.
// Get returns ("", nil) on a miss.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	NotificationThreshold int
	// SiteURL prefixes the admin link placed in notifications.
	SiteURL string
}

type LeadService interface {
	// Capture creates or refreshes the lead for an inbound submission and
	// notifies the team when it crosses the threshold.
	Capture(ctx context.Context, in CaptureInput) (*CaptureResult, error)

	ListLeads(ctx context.Context, query *ListLeadsQuery) (*LeadListResponse, error)

	GetStats(ctx context.Context) (*LeadStats, error)

	GetLead(ctx context.Context, id uint) (*LeadDetailResponse, error)

	UpdateLead(ctx context.Context, id uint, req *UpdateLeadRequest) (*LeadResponse, error)

	AddNote(ctx context.Context, id uint, req *AddNoteRequest) (*LeadNoteResponse, error)

	DeleteLead(ctx context.Context, id uint) error

	// RecordActivity appends a timeline entry, e.g. email_sent from the forms.
	RecordActivity(ctx context.Context, id uint, kind, detail string) error
}

type leadService struct {
	logger     *log.Logger
	repository LeadRepository
	notifier   Notifier
	cache      StatsCache
	metrics    *metrics.Recorder
	opts       Options
	now        func() time.Time
}

func NewLeadService(
	logger *log.Logger,
	repository LeadRepository,
	notifier Notifier,
	cache StatsCache,
	recorder *metrics.Recorder,
	opts Options,
) LeadService {
	if opts.NotificationThreshold <= 0 {
		opts.NotificationThreshold = constants.DefaultLeadNotificationThreshold
	}
	opts.SiteURL = strings.TrimRight(opts.SiteURL, "/")

	return &leadService{
		logger:     logger,
		repository: repository,
		notifier:   notifier,
		cache:      cache,
		metrics:    recorder,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *leadService) Capture(ctx context.Context, in CaptureInput) (*CaptureResult, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" {
		return nil, apperrors.NewInvalidRequestError("email is required", nil)
	}
	if in.Source == "" {
		in.Source = models.LeadSourceContactForm
	}

	score := Score(ScoreInput{
		Budget:   in.Budget,
		Timeline: in.Timeline,
		Service:  in.Service,
		Company:  in.Company,
		Phone:    in.Phone,
		Message:  in.Message,
	})
	now := s.now()

	lead, created, err := s.upsert(ctx, in, score, now)
	if err != nil {
		logger.Error("Failed to capture lead", "email", in.Email, "source", in.Source, "error", err)
		return nil, err
	}

	s.metrics.LeadCaptured(in.Source)
	s.invalidateStats(ctx)

	result := &CaptureResult{
		Lead:      lead,
		Created:   created,
		HighValue: IsHighValue(lead.Score, s.opts.NotificationThreshold),
	}

	logger.Info("Lead captured",
		"lead_id", lead.ID,
		"source", in.Source,
		"score", lead.Score,
		"created", created,
		"high_value", result.HighValue,
	)

	if result.HighValue {
		result.Notified = s.notify(ctx, lead, in)
	}

	return result, nil
}

func (s *leadService) upsert(ctx context.Context, in CaptureInput, score int, now time.Time) (*models.Lead, bool, error) {
	existing, err := s.repository.FindByEmail(ctx, in.Email)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, false, err
	}

	if existing == nil {
		lead := &models.Lead{
			Email:          in.Email,
			Name:           in.Name,
			Company:        in.Company,
			Phone:          in.Phone,
			Source:         in.Source,
			Service:        in.Service,
			Budget:         in.Budget,
			Timeline:       in.Timeline,
			Score:          score,
			Status:         models.LeadStatusNew,
			LastActivityAt: &now,
		}
		activity := &models.LeadActivity{
			Kind:      models.ActivityCreated,
			Detail:    fmt.Sprintf("source=%s score=%d", in.Source, score),
			CreatedAt: now,
		}

		created, err := s.repository.Create(ctx, lead, activity)
		if err == nil {
			return created, true, nil
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return nil, false, err
		}

		// Lost a race with a concurrent submission for the same email.
		existing, err = s.repository.FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, false, err
		}
	}

	refreshLead(existing, in)
	if score > existing.Score {
		existing.Score = score
	}
	existing.LastActivityAt = &now

	activity := models.LeadActivity{
		Kind:      models.ActivityResubmitted,
		Detail:    fmt.Sprintf("source=%s score=%d", in.Source, score),
		CreatedAt: now,
	}
	if err := s.repository.Save(ctx, existing, []models.LeadActivity{activity}); err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

// refreshLead copies the contact fields that were supplied on this submission.
// A name only replaces a longer one, so a first name from a short form does
// not clobber the full name given on the contact form.
func refreshLead(lead *models.Lead, in CaptureInput) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	if name := strings.TrimSpace(in.Name); utf8.RuneCountInString(name) > utf8.RuneCountInString(lead.Name) {
		lead.Name = name
	}
	set(&lead.Company, in.Company)
	set(&lead.Phone, in.Phone)
	set(&lead.Service, in.Service)
	set(&lead.Budget, in.Budget)
	set(&lead.Timeline, in.Timeline)
}

// notify never fails the capture; it reports whether any channel accepted the message.
func (s *leadService) notify(ctx context.Context, lead *models.Lead, in CaptureInput) bool {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if s.notifier == nil || !s.notifier.Enabled() {
		logger.Info("High-value lead but no notification channel configured", "lead_id", lead.ID)
		return false
	}

	results := s.notifier.Dispatch(ctx, notify.LeadNotification{
		LeadID:   lead.ID,
		Name:     lead.Name,
		Email:    lead.Email,
		Company:  lead.Company,
		Phone:    lead.Phone,
		Service:  lead.Service,
		Budget:   lead.Budget,
		Timeline: lead.Timeline,
		Source:   in.Source,
		Score:    lead.Score,
		Message:  in.Message,
		AdminURL: fmt.Sprintf("%s/admin/leads/%d", s.opts.SiteURL, lead.ID),
	})

	delivered := false
	outcomes := make([]string, 0, len(results))
	for _, r := range results {
		outcome := "ok"
		if !r.OK() {
			outcome = "failed"
		} else {
			delivered = true
		}
		outcomes = append(outcomes, r.Channel+"="+outcome)
	}

	now := s.now()
	if delivered {
		lead.NotifiedAt = &now
	}

	activity := models.LeadActivity{
		Kind:      models.ActivityNotified,
		Detail:    strings.Join(outcomes, " "),
		CreatedAt: now,
	}
	if err := s.repository.Save(ctx, lead, []models.LeadActivity{activity}); err != nil {
		logger.Error("Failed to record lead notification", "lead_id", lead.ID, "error", err)
	}

	return delivered
}

func (s *leadService) ListLeads(ctx context.Context, query *ListLeadsQuery) (*LeadListResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if query == nil {
		query = &ListLeadsQuery{}
	}

	filter := LeadFilter{
		Status:   query.Status,
		Source:   query.Source,
		MinScore: query.MinScore,
		Query:    query.Query,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = constants.DefaultPageSize
	}
	if filter.Limit > constants.MaxPageSize {
		filter.Limit = constants.MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	leads, total, err := s.repository.List(ctx, filter)
	if err != nil {
		logger.Error("Failed to list leads", "error", err)
		return nil, err
	}

	items := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		items = append(items, ToLeadResponse(&leads[i]))
	}

	return &LeadListResponse{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *leadService) GetStats(ctx context.Context) (*LeadStats, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, statsCacheKey)
		if err != nil {
			logger.Warn("Lead stats cache read failed", "error", err)
		} else if raw != "" {
			var cached LeadStats
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	stats, err := s.repository.Stats(ctx, s.opts.NotificationThreshold)
	if err != nil {
		logger.Error("Failed to compute lead stats", "error", err)
		return nil, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			err = s.cache.Set(ctx, statsCacheKey, string(payload), statsCacheTTL)
		}
		if err != nil {
			logger.Warn("Lead stats cache write failed", "error", err)
		}
	}

	return stats, nil
}

func (s *leadService) GetLead(ctx context.Context, id uint) (*LeadDetailResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id == 0 {
		return nil, apperrors.NewInvalidRequestError("invalid lead ID", nil)
	}

	lead, err := s.repository.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find lead", "id", id, "error", err)
		return nil, err
	}

	response := ToLeadDetailResponse(lead)
	return &response, nil
}

func (s *leadService) UpdateLead(ctx context.Context, id uint, req *UpdateLeadRequest) (*LeadResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id == 0 {
		return nil, apperrors.NewInvalidRequestError("invalid lead ID", nil)
	}
	if req == nil || (req.Status == nil && req.Score == nil) {
		return nil, NewNothingToUpdateError()
	}
	if req.Status != nil && !models.IsValidLeadStatus(*req.Status) {
		return nil, apperrors.NewInvalidRequestError("invalid lead status", nil)
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > constants.MaxLeadScore) {
		return nil, apperrors.NewInvalidRequestError("score must be between 0 and 100", nil)
	}

	lead, err := s.repository.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find lead for update", "id", id, "error", err)
		return nil, err
	}

	now := s.now()
	var activities []models.LeadActivity

	if req.Status != nil && *req.Status != lead.Status {
		activities = append(activities, models.LeadActivity{
			Kind:      models.ActivityStatusChanged,
			Detail:    fmt.Sprintf("%s -> %s", lead.Status, *req.Status),
			CreatedAt: now,
		})
		lead.Status = *req.Status
	}
	if req.Score != nil && *req.Score != lead.Score {
		activities = append(activities, models.LeadActivity{
			Kind:      models.ActivityScoreChanged,
			Detail:    fmt.Sprintf("%d -> %d", lead.Score, *req.Score),
			CreatedAt: now,
		})
		lead.Score = *req.Score
	}

	if len(activities) > 0 {
		lead.LastActivityAt = &now
		if err := s.repository.Save(ctx, lead, activities); err != nil {
			logger.Error("Failed to update lead", "id", id, "error", err)
			return nil, err
		}
		s.invalidateStats(ctx)
	}

	response := ToLeadResponse(lead)
	return &response, nil
}

func (s *leadService) AddNote(ctx context.Context, id uint, req *AddNoteRequest) (*LeadNoteResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id == 0 {
		return nil, apperrors.NewInvalidRequestError("invalid lead ID", nil)
	}
	if req == nil || strings.TrimSpace(req.Body) == "" || strings.TrimSpace(req.Author) == "" {
		return nil, apperrors.NewInvalidRequestError("author and body are required", nil)
	}

	if _, err := s.repository.FindByID(ctx, id); err != nil {
		logger.Error("Failed to find lead for note", "id", id, "error", err)
		return nil, err
	}

	now := s.now()
	note := &models.LeadNote{
		LeadID:    id,
		Author:    strings.TrimSpace(req.Author),
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: now,
	}
	activity := &models.LeadActivity{
		Kind:      models.ActivityNoteAdded,
		Detail:    "by " + note.Author,
		CreatedAt: now,
	}

	if err := s.repository.AddNote(ctx, note, activity); err != nil {
		logger.Error("Failed to add lead note", "id", id, "error", err)
		return nil, err
	}

	response := ToLeadNoteResponse(note)
	return &response, nil
}

func (s *leadService) DeleteLead(ctx context.Context, id uint) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id == 0 {
		return apperrors.NewInvalidRequestError("invalid lead ID", nil)
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete lead", "id", id, "error", err)
		return err
	}

	s.invalidateStats(ctx)
	logger.Info("Lead deleted", "id", id)
	return nil
}

func (s *leadService) RecordActivity(ctx context.Context, id uint, kind, detail string) error {
	if id == 0 || kind == "" {
		return apperrors.NewInvalidRequestError("lead ID and activity kind are required", nil)
	}

	err := s.repository.AddActivity(ctx, &models.LeadActivity{
		LeadID:    id,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: s.now(),
	})
	if err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Error("Failed to record lead activity", "id", id, "kind", kind, "error", err)
		return err
	}
	return nil
}

func (s *leadService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Lead stats cache invalidation failed", "error", err)
	}
}
