package leadmagnet

import (
	"context"
	"strings"
	"sync/atomic"

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

type LeadMagnetService interface {
	// Request hands out a download. Once the input is valid the download URL
	// is always returned; lead capture and email are best effort.
	Request(ctx context.Context, req *LeadMagnetRequest) (*LeadMagnetResponse, error)

	Catalog() []Resource
}

type leadMagnetService struct {
	logger     *log.Logger
	leads      LeadCapturer
	sequences  SequenceEnroller
	newsletter Subscriber
	sender     email.Sender
	templates  *email.Templates
	siteURL    string
}

func NewLeadMagnetService(
	logger *log.Logger,
	leadCapturer LeadCapturer,
	enroller SequenceEnroller,
	subscriber Subscriber,
	sender email.Sender,
	templates *email.Templates,
	siteURL string,
) LeadMagnetService {
	if templates == nil {
		templates = email.MustLoadTemplates()
	}

	return &leadMagnetService{
		logger:     logger,
		leads:      leadCapturer,
		sequences:  enroller,
		newsletter: subscriber,
		sender:     sender,
		templates:  templates,
		siteURL:    strings.TrimRight(siteURL, "/"),
	}
}

func (s *leadMagnetService) Catalog() []Resource {
	return Resources()
}

func (s *leadMagnetService) Request(ctx context.Context, req *LeadMagnetRequest) (*LeadMagnetResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}
	resource, ok := Lookup(req.Resource)
	if !ok {
		return nil, apperrors.NewInvalidRequestError("unknown resource", nil)
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if emailAddr == "" {
		return nil, apperrors.NewInvalidRequestError("email is required", nil)
	}
	firstName := strings.TrimSpace(req.FirstName)

	response := &LeadMagnetResponse{
		DownloadURL: s.siteURL + "/downloads/" + resource.File,
		Resource:    resource,
	}

	var leadID uint
	captured, err := s.leads.Capture(ctx, leads.CaptureInput{
		Email:  emailAddr,
		Name:   firstName,
		Source: models.LeadSourceLeadMagnet,
	})
	if err != nil {
		logger.Error("Failed to capture lead magnet lead", "resource", resource.Key, "error", err)
	} else {
		leadID = captured.Lead.ID
	}

	var (
		g    errgroup.Group
		sent atomic.Bool
	)

	g.Go(func() error {
		if s.deliver(ctx, logger, emailAddr, firstName, resource, response.DownloadURL) {
			sent.Store(true)
			if leadID != 0 {
				if err := s.leads.RecordActivity(ctx, leadID, models.ActivityEmailSent, email.TemplateLeadMagnetDelivery+":"+resource.Key); err != nil {
					logger.Warn("Failed to record delivery on lead timeline", "error", err)
				}
			}
		}
		return nil
	})

	if s.sequences != nil {
		g.Go(func() error {
			if _, _, err := s.sequences.Enroll(ctx, emailAddr, firstName, sequences.LeadMagnetNurture); err != nil {
				logger.Error("Failed to enroll in nurture sequence", "error", err)
			}
			return nil
		})
	}

	if req.NewsletterOptIn && s.newsletter != nil {
		g.Go(func() error {
			if _, err := s.newsletter.Subscribe(ctx, newsletter.SubscribeInput{
				Email:     emailAddr,
				FirstName: firstName,
				Source:    models.LeadSourceLeadMagnet,
			}); err != nil {
				logger.Error("Failed to subscribe lead magnet requester", "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	response.EmailSent = sent.Load()

	logger.Info("Lead magnet requested", "resource", resource.Key, "lead_id", leadID, "email_sent", response.EmailSent)

	return response, nil
}

func (s *leadMagnetService) deliver(ctx context.Context, logger *log.Logger, to, firstName string, resource Resource, downloadURL string) bool {
	if s.sender == nil {
		return false
	}

	msg, err := s.templates.Compose(email.TemplateLeadMagnetDelivery, to, email.TemplateData{
		SiteURL:       s.siteURL,
		FirstName:     firstName,
		ResourceTitle: resource.Title,
		ActionURL:     downloadURL,
		ActionLabel:   "Download " + resource.Title,
	})
	if err == nil {
		msg.Tags = map[string]string{"category": "lead-magnet", "resource": resource.Key}
		_, err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		logger.Error("Failed to send lead magnet delivery", "resource", resource.Key, "error", err)
		return false
	}
	return true
}
