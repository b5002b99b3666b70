package gdpr

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	SiteURL  string
	TokenTTL time.Duration
}

type GDPRService interface {
	// CreateRequest stores a pending request and mails the verification link.
	// Callers always answer with the same generic message so the endpoint
	// does not reveal which addresses are known.
	CreateRequest(ctx context.Context, in CreateInput) error
	Verify(ctx context.Context, token string) (*VerifyResponse, error)
	Export(ctx context.Context, emailAddr string) (*ExportDocument, error)
	Erase(ctx context.Context, emailAddr string) (*ErasureResult, error)
	ListRequests(ctx context.Context, query *ListRequestsQuery) (*RequestListResponse, error)
}

type gdprService struct {
	logger    *log.Logger
	repo      GDPRRepository
	sender    email.Sender
	templates *email.Templates
	opts      Options
	now       func() time.Time
}

func NewGDPRService(logger *log.Logger, repo GDPRRepository, sender email.Sender, templates *email.Templates, opts Options) GDPRService {
	if templates == nil {
		templates = email.MustLoadTemplates()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = constants.DefaultGDPRTokenTTL
	}
	opts.SiteURL = strings.TrimRight(opts.SiteURL, "/")

	return &gdprService{
		logger:    logger,
		repo:      repo,
		sender:    sender,
		templates: templates,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *gdprService) CreateRequest(ctx context.Context, in CreateInput) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	emailAddr := strings.ToLower(strings.TrimSpace(in.Email))
	if emailAddr == "" {
		return apperrors.NewInvalidRequestError("email is required", nil)
	}
	if !isValidRequestType(in.RequestType) {
		return apperrors.NewInvalidRequestError("unknown request type", nil)
	}

	request := &models.GDPRRequest{
		Email:             emailAddr,
		RequestType:       in.RequestType,
		Status:            models.GDPRStatusPending,
		VerificationToken: uuid.NewString(),
		ExpiresAt:         s.now().UTC().Add(s.opts.TokenTTL),
		IPAddress:         in.IPAddress,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		logger.Error("Failed to store privacy request", "request_type", in.RequestType, "error", err)
		return err
	}

	verifyURL := s.opts.SiteURL + "/privacy/verify?" + url.Values{"token": {request.VerificationToken}}.Encode()
	msg, err := s.templates.Compose(email.TemplateGDPRVerification, emailAddr, email.TemplateData{
		SiteURL:     s.opts.SiteURL,
		Heading:     verbFor(in.RequestType),
		ActionURL:   verifyURL,
		ActionLabel: "Confirm request",
		ExpiresAt:   request.ExpiresAt.Format("January 2, 2006 15:04 MST"),
	})
	if err == nil && s.sender != nil {
		msg.Tags = map[string]string{"category": "gdpr", "request_type": in.RequestType}
		_, err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		logger.Error("Failed to send privacy verification email", "request_id", request.ID, "error", err)
	}

	logger.Info("Privacy request created", "request_id", request.ID, "request_type", request.RequestType)
	return nil
}

func (s *gdprService) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewInvalidRequestError("token is required", nil)
	}

	request, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	switch request.Status {
	case models.GDPRStatusCompleted:
		return nil, NewAlreadyCompletedError()
	case models.GDPRStatusExpired:
		return nil, NewTokenExpiredError()
	}

	now := s.now().UTC()
	if !now.Before(request.ExpiresAt) {
		request.Status = models.GDPRStatusExpired
		if err := s.repo.SaveRequest(ctx, request); err != nil {
			logger.Error("Failed to mark privacy request expired", "request_id", request.ID, "error", err)
		}
		return nil, NewTokenExpiredError()
	}

	response := &VerifyResponse{RequestID: request.ID, RequestType: request.RequestType}

	switch request.RequestType {
	case models.GDPRRequestErasure:
		result, err := s.Erase(ctx, request.Email)
		if err != nil {
			return nil, err
		}
		response.Erasure = result
		request.ResultSummary = "deleted " + summarize(result.Deleted)
		s.sendErasureConfirmation(ctx, logger, request.Email, result.Total)
		request.Email = PseudonymizeEmail(request.Email)
		request.IPAddress = ""
	default:
		document, err := s.Export(ctx, request.Email)
		if err != nil {
			return nil, err
		}
		response.Export = document
		request.ResultSummary = "exported " + summarize(map[string]int64{
			TableContacts:              int64(len(document.Contacts)),
			TableLeads:                 int64(len(document.Leads)),
			TableNewsletterSubscribers: boolCount(document.Newsletter != nil),
			TableConsentRecords:        int64(len(document.ConsentRecords)),
			TableAnalyticsEvents:       int64(len(document.AnalyticsEvents)),
			TableSequenceEnrollments:   int64(len(document.SequenceEnrollments)),
		})
	}

	request.Status = models.GDPRStatusCompleted
	request.CompletedAt = &now
	// The work is done at this point; a failed status write only means the
	// link can be used again.
	if err := s.repo.SaveRequest(ctx, request); err != nil {
		logger.Error("Failed to mark privacy request completed", "request_id", request.ID, "error", err)
	}
	response.Status = request.Status

	logger.Info("Privacy request completed", "request_id", request.ID, "request_type", request.RequestType, "summary", request.ResultSummary)
	return response, nil
}

func (s *gdprService) Export(ctx context.Context, emailAddr string) (*ExportDocument, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	var (
		contacts    []models.Contact
		leads       []models.Lead
		subscriber  *models.NewsletterSubscriber
		consents    []models.ConsentRecord
		events      []models.AnalyticsEvent
		enrollments []models.SequenceEnrollment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { contacts, err = s.repo.FindContacts(gctx, emailAddr); return })
	g.Go(func() (err error) { leads, err = s.repo.FindLeads(gctx, emailAddr); return })
	g.Go(func() (err error) { subscriber, err = s.repo.FindSubscriber(gctx, emailAddr); return })
	g.Go(func() (err error) { consents, err = s.repo.FindConsentRecords(gctx, emailAddr); return })
	g.Go(func() (err error) { events, err = s.repo.FindAnalyticsEvents(gctx, emailAddr); return })
	g.Go(func() (err error) { enrollments, err = s.repo.FindEnrollments(gctx, emailAddr); return })
	if err := g.Wait(); err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Error("Failed to export personal data", "error", err)
		return nil, err
	}

	document := &ExportDocument{
		Email:               emailAddr,
		ExportedAt:          timestamp(s.now()),
		FormatVersion:       ExportFormatVersion,
		Contacts:            make([]ExportedContact, 0, len(contacts)),
		Leads:               make([]ExportedLead, 0, len(leads)),
		Newsletter:          toExportedSubscriber(subscriber),
		ConsentRecords:      make([]ExportedConsent, 0, len(consents)),
		AnalyticsEvents:     make([]ExportedEvent, 0, len(events)),
		SequenceEnrollments: make([]ExportedEnrollment, 0, len(enrollments)),
	}
	for i := range contacts {
		document.Contacts = append(document.Contacts, toExportedContact(&contacts[i]))
	}
	for i := range leads {
		document.Leads = append(document.Leads, toExportedLead(&leads[i]))
	}
	for i := range consents {
		document.ConsentRecords = append(document.ConsentRecords, toExportedConsent(&consents[i]))
	}
	for i := range events {
		document.AnalyticsEvents = append(document.AnalyticsEvents, toExportedEvent(&events[i]))
	}
	for i := range enrollments {
		document.SequenceEnrollments = append(document.SequenceEnrollments, toExportedEnrollment(&enrollments[i]))
	}

	return document, nil
}

func (s *gdprService) Erase(ctx context.Context, emailAddr string) (*ErasureResult, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return nil, apperrors.NewInvalidRequestError("email is required", nil)
	}

	deleted, err := s.repo.Erase(ctx, emailAddr)
	if err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Error("Failed to erase personal data", "error", err)
		return nil, err
	}

	result := &ErasureResult{Deleted: deleted}
	for _, n := range deleted {
		result.Total += n
	}
	return result, nil
}

func (s *gdprService) ListRequests(ctx context.Context, query *ListRequestsQuery) (*RequestListResponse, error) {
	if query == nil {
		query = &ListRequestsQuery{}
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

	requests, total, err := s.repo.ListRequests(ctx, query.Status, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, ToRequestResponse(&requests[i]))
	}

	return &RequestListResponse{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *gdprService) sendErasureConfirmation(ctx context.Context, logger *log.Logger, to string, total int64) {
	if s.sender == nil {
		return
	}
	msg, err := s.templates.Compose(email.TemplateGDPRErasureConfirmation, to, email.TemplateData{
		SiteURL: s.opts.SiteURL,
		Count:   total,
	})
	if err == nil {
		msg.Tags = map[string]string{"category": "gdpr", "request_type": models.GDPRRequestErasure}
		_, err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		logger.Warn("Failed to send erasure confirmation", "error", err)
	}
}

func isValidRequestType(t string) bool {
	switch t {
	case models.GDPRRequestAccess, models.GDPRRequestErasure, models.GDPRRequestPortability:
		return true
	}
	return false
}

func verbFor(requestType string) string {
	switch requestType {
	case models.GDPRRequestErasure:
		return "erase"
	case models.GDPRRequestPortability:
		return "export"
	default:
		return "access"
	}
}

// summarize renders counts as "contacts=1 leads=0 ..." in key order.
func summarize(counts map[string]int64) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func boolCount(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
