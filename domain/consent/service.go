package consent

import (
	"context"
	"strings"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"github.com/hudsondigital/hds-platform/pkg/utils"
)

const maxUserAgentLength = 512

type ConsentService interface {
	// Record appends a new consent row. Earlier choices are never modified.
	Record(ctx context.Context, req *ConsentRequest, meta RequestMeta) (*ConsentResponse, error)
	Latest(ctx context.Context, visitorID string) (*ConsentResponse, error)
}

type consentService struct {
	logger *log.Logger
	repo   ConsentRepository
}

func NewConsentService(logger *log.Logger, repo ConsentRepository) ConsentService {
	return &consentService{logger: logger, repo: repo}
}

func (s *consentService) Record(ctx context.Context, req *ConsentRequest, meta RequestMeta) (*ConsentResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}
	if req.Necessary == nil || !*req.Necessary {
		return nil, apperrors.NewInvalidRequestError("necessary cookies cannot be declined", nil)
	}

	userAgent := utils.TruncateBytes(meta.UserAgent, maxUserAgentLength)

	record := &models.ConsentRecord{
		VisitorID:     strings.ToLower(strings.TrimSpace(req.VisitorID)),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Necessary:     true,
		Analytics:     req.Analytics,
		Marketing:     req.Marketing,
		PolicyVersion: strings.TrimSpace(req.PolicyVersion),
		IPAddress:     meta.IPAddress,
		UserAgent:     userAgent,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		logger.Error("Failed to record consent", "visitor_id", record.VisitorID, "error", err)
		return nil, err
	}

	logger.Info("Consent recorded", "visitor_id", record.VisitorID, "analytics", record.Analytics, "marketing", record.Marketing)
	response := ToConsentResponse(record)
	return &response, nil
}

func (s *consentService) Latest(ctx context.Context, visitorID string) (*ConsentResponse, error) {
	visitorID = strings.ToLower(strings.TrimSpace(visitorID))
	if visitorID == "" {
		return nil, apperrors.NewInvalidRequestError("visitor_id is required", nil)
	}

	record, err := s.repo.FindLatest(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	response := ToConsentResponse(record)
	return &response, nil
}
