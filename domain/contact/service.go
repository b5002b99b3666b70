package contact

import (
	"context"
	"strings"

	"github.com/hudsondigital/hds-platform/domain/leads"
	"github.com/hudsondigital/hds-platform/domain/newsletter"
	"github.com/hudsondigital/hds-platform/domain/sequences"
	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type LeadCapturer interface {
	Capture(ctx context.Context, in leads.CaptureInput) (*leads.CaptureResult, error)
	RecordActivity(ctx context.Context, id uint, kind, detail string) error
}

type SequenceEnroller interface {
	Enroll(ctx context.Context, emailAddr, firstName, sequence string) (*models.SequenceEnrollment, bool, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, in newsletter.SubscribeInput) (*newsletter.SubscribeResponse, error)
}

type Options struct {
	SiteURL    string
	AdminEmail string
}

type ContactService interface {
	// Submit stores the submission, captures the lead and runs the
	// best-effort follow-ups (emails, drip enrollment, newsletter).
	Submit(ctx context.Context, req *ContactRequest, meta RequestMeta) (*ContactResponse, error)
}

type contactService struct {
	logger     *log.Logger
	repository ContactRepository
	leads      LeadCapturer
	sequences  SequenceEnroller
	newsletter Subscriber
	sender     email.Sender
	templates  *email.Templates
	opts       Options
}

func NewContactService(
	logger *log.Logger,
	repository ContactRepository,
	leadCapturer LeadCapturer,
	enroller SequenceEnroller,
	subscriber Subscriber,
	sender email.Sender,
	templates *email.Templates,
	opts Options,
) ContactService {
	if templates == nil {
		templates = email.MustLoadTemplates()
	}
	opts.SiteURL = strings.TrimRight(opts.SiteURL, "/")

	return &contactService{
		logger:     logger,
		repository: repository,
		leads:      leadCapturer,
		sequences:  enroller,
		newsletter: subscriber,
		sender:     sender,
		templates:  templates,
		opts:       opts,
	}
}

func (s *contactService) Submit(ctx context.Context, req *ContactRequest, meta RequestMeta) (*ContactResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Submit received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	contact := ToContactModel(req, meta)
	if len([]rune(contact.Name)) < 2 {
		return nil, apperrors.NewInvalidRequestError("name must be at least 2 characters", nil)
	}

	if err := s.repository.Create(ctx, contact); err != nil {
		logger.Error("Failed to store contact submission", "error", err)
		return nil, err
	}

	captured, err := s.leads.Capture(ctx, leads.CaptureInput{
		Email:    contact.Email,
		Name:     contact.Name,
		Company:  contact.Company,
		Phone:    contact.Phone,
		Source:   models.LeadSourceContactForm,
		Service:  contact.Service,
		Budget:   contact.Budget,
		Timeline: contact.Timeline,
		Message:  contact.Message,
	})
	if err != nil {
		logger.Error("Failed to capture lead from contact", "contact_id", contact.ID, "error", err)
		return nil, err
	}
	lead := captured.Lead

	if err := s.repository.LinkLead(ctx, contact.ID, lead.ID); err != nil {
		logger.Error("Failed to link contact to lead", "contact_id", contact.ID, "lead_id", lead.ID, "error", err)
	}

	s.followUp(ctx, contact, captured, req.NewsletterOptIn)

	logger.Info("Contact submission processed",
		"contact_id", contact.ID,
		"lead_id", lead.ID,
		"score", lead.Score,
		"high_value", captured.HighValue,
	)

	return &ContactResponse{
		ContactID: contact.ID,
		LeadID:    lead.ID,
		LeadScore: lead.Score,
		HighValue: captured.HighValue,
	}, nil
}

// followUp runs the independent best-effort side effects concurrently.
// Failures are logged and never reach the caller.
func (s *contactService) followUp(ctx context.Context, contact *models.Contact, captured *leads.CaptureResult, optIn bool) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger).With("contact_id", contact.ID, "lead_id", captured.Lead.ID)

	var g errgroup.Group

	g.Go(func() error {
		s.sendConfirmation(ctx, logger, contact, captured.Lead.ID)
		return nil
	})

	if s.opts.AdminEmail != "" {
		g.Go(func() error {
			s.sendAdminAlert(ctx, logger, contact, captured)
			return nil
		})
	}

	if s.sequences != nil {
		g.Go(func() error {
			if _, _, err := s.sequences.Enroll(ctx, contact.Email, firstName(contact.Name), sequences.ContactFollowUp); err != nil {
				logger.Error("Failed to enroll contact in follow-up sequence", "error", err)
			}
			return nil
		})
	}

	if optIn && s.newsletter != nil {
		g.Go(func() error {
			if _, err := s.newsletter.Subscribe(ctx, newsletter.SubscribeInput{
				Email:     contact.Email,
				FirstName: firstName(contact.Name),
				Source:    models.LeadSourceContactForm,
			}); err != nil {
				logger.Error("Failed to subscribe contact to newsletter", "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (s *contactService) sendConfirmation(ctx context.Context, logger *log.Logger, contact *models.Contact, leadID uint) {
	if s.sender == nil {
		return
	}

	msg, err := s.templates.Compose(email.TemplateContactConfirmation, contact.Email, email.TemplateData{
		SiteURL:   s.opts.SiteURL,
		FirstName: firstName(contact.Name),
		Name:      contact.Name,
		Service:   contact.Service,
		Message:   contact.Message,
	})
	if err == nil {
		msg.Tags = map[string]string{"category": "contact"}
		_, err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		logger.Error("Failed to send contact confirmation", "error", err)
		return
	}

	if err := s.leads.RecordActivity(ctx, leadID, models.ActivityEmailSent, email.TemplateContactConfirmation); err != nil {
		logger.Warn("Failed to record confirmation on lead timeline", "error", err)
	}
}

func (s *contactService) sendAdminAlert(ctx context.Context, logger *log.Logger, contact *models.Contact, captured *leads.CaptureResult) {
	if s.sender == nil {
		return
	}

	msg, err := s.templates.Compose(email.TemplateContactAdminAlert, s.opts.AdminEmail, email.TemplateData{
		SiteURL:   s.opts.SiteURL,
		Name:      contact.Name,
		Email:     contact.Email,
		Company:   contact.Company,
		Phone:     contact.Phone,
		Service:   contact.Service,
		Budget:    contact.Budget,
		Timeline:  contact.Timeline,
		Message:   contact.Message,
		Score:     captured.Lead.Score,
		HighValue: captured.HighValue,
		LeadID:    captured.Lead.ID,
	})
	if err == nil {
		msg.ReplyTo = contact.Email
		msg.Tags = map[string]string{"category": "admin-alert"}
		_, err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		logger.Error("Failed to send admin contact alert", "error", err)
	}
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
