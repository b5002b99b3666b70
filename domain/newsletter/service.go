package newsletter

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/hudsondigital/hds-platform/domain/leads"
	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
)

// SequenceCanceller stops drip sequences when someone unsubscribes.
type SequenceCanceller interface {
	CancelForEmail(ctx context.Context, email string) (int64, error)
	CancelByToken(ctx context.Context, token string) (string, int64, error)
}

type LeadCapturer interface {
	Capture(ctx context.Context, in leads.CaptureInput) (*leads.CaptureResult, error)
}

type NewsletterService interface {
	// Subscribe creates or reactivates a subscription; subscribing twice is not an error.
	Subscribe(ctx context.Context, in SubscribeInput) (*SubscribeResponse, error)

	// Unsubscribe accepts a subscriber token or a drip enrollment token.
	Unsubscribe(ctx context.Context, token string) (*UnsubscribeResponse, error)

	ListSubscribers(ctx context.Context, query *ListSubscribersQuery) (*SubscriberListResponse, error)
}

type newsletterService struct {
	logger     *log.Logger
	repository SubscriberRepository
	sequences  SequenceCanceller
	leads      LeadCapturer
	sender     email.Sender
	templates  *email.Templates
	siteURL    string
	now        func() time.Time
}

func NewNewsletterService(
	logger *log.Logger,
	repository SubscriberRepository,
	sequences SequenceCanceller,
	leadCapturer LeadCapturer,
	sender email.Sender,
	templates *email.Templates,
	siteURL string,
) NewsletterService {
	if templates == nil {
		templates = email.MustLoadTemplates()
	}

	return &newsletterService{
		logger:     logger,
		repository: repository,
		sequences:  sequences,
		leads:      leadCapturer,
		sender:     sender,
		templates:  templates,
		siteURL:    strings.TrimRight(siteURL, "/"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *newsletterService) Subscribe(ctx context.Context, in SubscribeInput) (*SubscribeResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	if in.Email == "" {
		return nil, apperrors.NewInvalidRequestError("email is required", nil)
	}
	if in.Source == "" {
		in.Source = "website"
	}

	subscriber, outcome, err := s.upsert(ctx, in)
	if err != nil {
		logger.Error("Failed to subscribe", "source", in.Source, "error", err)
		return nil, err
	}

	logger.Info("Newsletter subscription", "subscriber_id", subscriber.ID, "outcome", outcome, "source", in.Source)

	if outcome != OutcomeAlreadySubscribed {
		s.sendWelcome(ctx, subscriber)
	}

	if in.CaptureLead && s.leads != nil {
		if _, err := s.leads.Capture(ctx, leads.CaptureInput{
			Email:  in.Email,
			Name:   in.FirstName,
			Source: models.LeadSourceNewsletter,
		}); err != nil {
			logger.Error("Failed to capture newsletter lead", "error", err)
		}
	}

	return &SubscribeResponse{Email: subscriber.Email, Outcome: outcome}, nil
}

func (s *newsletterService) upsert(ctx context.Context, in SubscribeInput) (*models.NewsletterSubscriber, string, error) {
	now := s.now()

	existing, err := s.repository.FindByEmail(ctx, in.Email)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, "", err
	}

	if existing == nil {
		subscriber := &models.NewsletterSubscriber{
			Email:        in.Email,
			FirstName:    in.FirstName,
			Status:       models.SubscriberStatusSubscribed,
			Source:       in.Source,
			SubscribedAt: now,
		}
		err := s.repository.Create(ctx, subscriber)
		if err == nil {
			return subscriber, OutcomeSubscribed, nil
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return nil, "", err
		}
		if existing, err = s.repository.FindByEmail(ctx, in.Email); err != nil {
			return nil, "", err
		}
	}

	if existing.Status == models.SubscriberStatusSubscribed {
		return existing, OutcomeAlreadySubscribed, nil
	}

	existing.Status = models.SubscriberStatusSubscribed
	existing.SubscribedAt = now
	existing.UnsubscribedAt = nil
	if in.FirstName != "" {
		existing.FirstName = in.FirstName
	}
	if err := s.repository.Save(ctx, existing); err != nil {
		return nil, "", err
	}

	return existing, OutcomeResubscribed, nil
}

func (s *newsletterService) sendWelcome(ctx context.Context, subscriber *models.NewsletterSubscriber) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if s.sender == nil {
		return
	}

	msg, err := s.templates.Compose(email.TemplateNewsletterWelcome, subscriber.Email, email.TemplateData{
		SiteURL:        s.siteURL,
		UnsubscribeURL: s.siteURL + "/unsubscribe?" + url.Values{"token": {subscriber.UnsubscribeToken}}.Encode(),
		FirstName:      subscriber.FirstName,
	})
	if err == nil {
		_, err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		logger.Error("Failed to send newsletter welcome", "subscriber_id", subscriber.ID, "error", err)
	}
}

func (s *newsletterService) Unsubscribe(ctx context.Context, token string) (*UnsubscribeResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewInvalidRequestError("token is required", nil)
	}

	subscriber, err := s.repository.FindByToken(ctx, token)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			logger.Error("Failed to look up unsubscribe token", "error", err)
			return nil, err
		}
		return s.unsubscribeEnrollment(ctx, token)
	}

	response := &UnsubscribeResponse{
		Email:               subscriber.Email,
		AlreadyUnsubscribed: subscriber.Status == models.SubscriberStatusUnsubscribed,
	}

	if !response.AlreadyUnsubscribed {
		now := s.now()
		subscriber.Status = models.SubscriberStatusUnsubscribed
		subscriber.UnsubscribedAt = &now
		if err := s.repository.Save(ctx, subscriber); err != nil {
			logger.Error("Failed to unsubscribe", "subscriber_id", subscriber.ID, "error", err)
			return nil, err
		}
		logger.Info("Newsletter unsubscribe", "subscriber_id", subscriber.ID)
	}

	if s.sequences != nil {
		cancelled, err := s.sequences.CancelForEmail(ctx, subscriber.Email)
		if err != nil {
			logger.Error("Failed to cancel sequences on unsubscribe", "subscriber_id", subscriber.ID, "error", err)
		}
		response.CancelledSequences = cancelled
	}

	return response, nil
}

func (s *newsletterService) unsubscribeEnrollment(ctx context.Context, token string) (*UnsubscribeResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if s.sequences == nil {
		return nil, NewSubscriberNotFoundError(nil)
	}

	emailAddr, cancelled, err := s.sequences.CancelByToken(ctx, token)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, NewSubscriberNotFoundError(err)
		}
		return nil, err
	}

	already, err := s.recordOptOut(ctx, emailAddr)
	if err != nil {
		logger.Error("Failed to record sequence opt-out", "error", err)
		return nil, err
	}
	logger.Info("Sequence unsubscribe", "cancelled", cancelled)

	return &UnsubscribeResponse{
		Email:               emailAddr,
		AlreadyUnsubscribed: already && cancelled == 0,
		CancelledSequences:  cancelled,
	}, nil
}

// recordOptOut stores an unsubscribed row for emailAddr so later form
// submissions do not enroll it again. It reports whether the address had
// already opted out.
func (s *newsletterService) recordOptOut(ctx context.Context, emailAddr string) (bool, error) {
	now := s.now()

	existing, err := s.repository.FindByEmail(ctx, emailAddr)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return false, err
	}

	if existing == nil {
		err := s.repository.Create(ctx, &models.NewsletterSubscriber{
			Email:          emailAddr,
			Status:         models.SubscriberStatusUnsubscribed,
			Source:         SourceSequenceOptOut,
			SubscribedAt:   now,
			UnsubscribedAt: &now,
		})
		if err == nil {
			return false, nil
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return false, err
		}
		if existing, err = s.repository.FindByEmail(ctx, emailAddr); err != nil {
			return false, err
		}
	}

	if existing.Status == models.SubscriberStatusUnsubscribed {
		return true, nil
	}

	existing.Status = models.SubscriberStatusUnsubscribed
	existing.UnsubscribedAt = &now
	return false, s.repository.Save(ctx, existing)
}

func (s *newsletterService) ListSubscribers(ctx context.Context, query *ListSubscribersQuery) (*SubscriberListResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if query == nil {
		query = &ListSubscribersQuery{}
	}
	limit := query.Limit
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	subscribers, total, err := s.repository.List(ctx, query.Status, limit, offset)
	if err != nil {
		logger.Error("Failed to list subscribers", "error", err)
		return nil, err
	}

	items := make([]SubscriberResponse, 0, len(subscribers))
	for i := range subscribers {
		items = append(items, ToSubscriberResponse(&subscribers[i]))
	}

	return &SubscriberListResponse{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}
