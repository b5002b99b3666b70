package sequences

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
)

type ProcessResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type SequenceService interface {
	// Enroll starts sequence for email. Re-enrolling while active is a no-op
	// and returns the existing enrollment with created=false. Addresses that
	// opted out of marketing mail are never enrolled; they get a nil enrollment.
	Enroll(ctx context.Context, emailAddr, firstName, sequence string) (*models.SequenceEnrollment, bool, error)

	// ProcessDue sends the next step of up to batch due enrollments.
	ProcessDue(ctx context.Context, now time.Time, batch int) (*ProcessResult, error)

	// CancelForEmail stops every active enrollment of the address.
	CancelForEmail(ctx context.Context, emailAddr string) (int64, error)

	// CancelByToken cancels the enrollments of whoever owns enrollment id
	// token. Unknown ids return a not-found error.
	CancelByToken(ctx context.Context, token string) (string, int64, error)
}

type sequenceService struct {
	logger     *log.Logger
	repository EnrollmentRepository
	sender     email.Sender
	templates  *email.Templates
	siteURL    string

	// Serializes ProcessDue between the scheduler, the cron route and the CLI.
	processing sync.Mutex
	now        func() time.Time
}

func NewSequenceService(
	logger *log.Logger,
	repository EnrollmentRepository,
	sender email.Sender,
	templates *email.Templates,
	siteURL string,
) SequenceService {
	if templates == nil {
		templates = email.MustLoadTemplates()
	}

	return &sequenceService{
		logger:     logger,
		repository: repository,
		sender:     sender,
		templates:  templates,
		siteURL:    strings.TrimRight(siteURL, "/"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *sequenceService) Enroll(ctx context.Context, emailAddr, firstName, sequence string) (*models.SequenceEnrollment, bool, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	seq, ok := Lookup(sequence)
	if !ok {
		return nil, false, NewUnknownSequenceError(sequence)
	}
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return nil, false, apperrors.NewInvalidRequestError("email is required", nil)
	}

	status, _, err := s.repository.SubscriberState(ctx, emailAddr)
	if err != nil {
		logger.Error("Failed to check subscriber state", "sequence", sequence, "error", err)
		return nil, false, err
	}
	if status == models.SubscriberStatusUnsubscribed {
		logger.Info("Skipping enrollment of unsubscribed address", "sequence", sequence)
		return nil, false, nil
	}

	existing, err := s.repository.FindActive(ctx, emailAddr, sequence)
	if err == nil {
		return existing, false, nil
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		logger.Error("Failed to look up enrollment", "sequence", sequence, "error", err)
		return nil, false, err
	}

	now := s.now()
	enrollment := &models.SequenceEnrollment{
		Email:      emailAddr,
		FirstName:  strings.TrimSpace(firstName),
		Sequence:   sequence,
		Status:     models.EnrollmentActive,
		NextSendAt: seq.NextSendAt(now, now, 0),
		CreatedAt:  now,
	}

	if err := s.repository.Create(ctx, enrollment); err != nil {
		logger.Error("Failed to enroll in sequence", "sequence", sequence, "error", err)
		return nil, false, err
	}

	logger.Info("Enrolled in email sequence", "sequence", sequence, "enrollment_id", enrollment.ID)
	return enrollment, true, nil
}

func (s *sequenceService) ProcessDue(ctx context.Context, now time.Time, batch int) (*ProcessResult, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	s.processing.Lock()
	defer s.processing.Unlock()

	result := &ProcessResult{}

	if s.sender == nil || !s.sender.Enabled() {
		logger.Warn("Email delivery disabled; sequence processing skipped")
		return result, nil
	}
	if batch <= 0 {
		batch = constants.DefaultEmailBatchSize
	}

	due, err := s.repository.ListDue(ctx, now, batch)
	if err != nil {
		logger.Error("Failed to load due enrollments", "error", err)
		return nil, err
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			logger.Warn("Sequence processing interrupted", "processed", result.Processed, "error", err)
			break
		}
		s.processOne(ctx, &due[i], now, result)
	}

	logger.Info("Sequence processing finished",
		"processed", result.Processed,
		"sent", result.Sent,
		"failed", result.Failed,
		"completed", result.Completed,
		"cancelled", result.Cancelled,
	)

	return result, nil
}

func (s *sequenceService) processOne(ctx context.Context, e *models.SequenceEnrollment, now time.Time, result *ProcessResult) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger).With("enrollment_id", e.ID, "sequence", e.Sequence)
	result.Processed++

	seq, ok := Lookup(e.Sequence)
	if !ok || e.CurrentStep >= len(seq.Steps) {
		e.Status = models.EnrollmentCompleted
		if !ok {
			e.Status = models.EnrollmentCancelled
			e.LastError = "unknown sequence"
		}
		s.save(ctx, logger, e)
		if ok {
			result.Completed++
		} else {
			result.Cancelled++
		}
		return
	}

	status, token, err := s.repository.SubscriberState(ctx, e.Email)
	if err != nil {
		logger.Error("Failed to check subscriber state", "error", err)
		result.Failed++
		return
	}
	if status == models.SubscriberStatusUnsubscribed {
		e.Status = models.EnrollmentCancelled
		s.save(ctx, logger, e)
		result.Cancelled++
		return
	}
	if token == "" {
		token = e.ID
	}

	step := seq.Steps[e.CurrentStep]
	msg, err := s.templates.Compose(step.Template, e.Email, email.TemplateData{
		SiteURL:        s.siteURL,
		UnsubscribeURL: s.siteURL + "/unsubscribe?" + url.Values{"token": {token}}.Encode(),
		FirstName:      e.FirstName,
		Heading:        step.Subject,
		Paragraphs:     step.Paragraphs,
		ActionLabel:    step.ActionLabel,
		ActionURL:      s.siteURL + step.ActionPath,
	})
	if err == nil {
		msg.Tags = map[string]string{"sequence": e.Sequence, "step": step.Key}
		msg.IdempotencyKey = "sequence/" + e.ID + "/" + step.Key
		_, err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		logger.Error("Failed to send sequence step", "step", step.Key, "error", err)
		e.LastError = err.Error()
		s.save(ctx, logger, e)
		result.Failed++
		return
	}

	sentAt := now
	e.LastSentAt = &sentAt
	e.LastError = ""
	e.CurrentStep++
	result.Sent++

	if e.CurrentStep >= len(seq.Steps) {
		e.Status = models.EnrollmentCompleted
		result.Completed++
	} else {
		e.NextSendAt = seq.NextSendAt(e.CreatedAt, now, e.CurrentStep)
	}

	s.save(ctx, logger, e)
}

func (s *sequenceService) save(ctx context.Context, logger *log.Logger, e *models.SequenceEnrollment) {
	updated, err := s.repository.SaveProgress(ctx, e)
	if err != nil {
		logger.Error("Failed to persist enrollment progress", "error", err)
		return
	}
	if !updated {
		logger.Info("Enrollment cancelled while processing; progress discarded")
	}
}

func (s *sequenceService) CancelForEmail(ctx context.Context, emailAddr string) (int64, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	cancelled, err := s.repository.CancelActive(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		logger.Error("Failed to cancel enrollments", "error", err)
		return 0, err
	}
	if cancelled > 0 {
		logger.Info("Cancelled email sequences", "count", cancelled)
	}
	return cancelled, nil
}

func (s *sequenceService) CancelByToken(ctx context.Context, token string) (string, int64, error) {
	enrollment, err := s.repository.FindByID(ctx, strings.TrimSpace(token))
	if err != nil {
		return "", 0, err
	}

	cancelled, err := s.CancelForEmail(ctx, enrollment.Email)
	if err != nil {
		return "", 0, err
	}
	return enrollment.Email, cancelled, nil
}
