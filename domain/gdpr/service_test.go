package gdpr

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type stubSender struct {
	err  error
	sent []email.Message
}

func (s *stubSender) Send(_ context.Context, msg email.Message) (string, error) {
	s.sent = append(s.sent, msg)
	return "id", s.err
}

func (s *stubSender) Enabled() bool { return true }

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *MockGDPRRepository
	sender  *stubSender
	service *gdprService
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{repo: NewMockGDPRRepository(ctrl), sender: &stubSender{}}
	f.service = NewGDPRService(log.NewDiscardLogger(), f.repo, f.sender, nil, Options{
		SiteURL:  "https://hds.test/",
		TokenTTL: 48 * time.Hour,
	}).(*gdprService)
	f.service.now = func() time.Time { return testNow }
	return f
}

func pendingRequest(requestType string) *models.GDPRRequest {
	return &models.GDPRRequest{
		ID:                9,
		Email:             "sam@example.com",
		RequestType:       requestType,
		Status:            models.GDPRStatusPending,
		VerificationToken: "tok-9",
		ExpiresAt:         testNow.Add(time.Hour),
	}
}

func TestGDPRService_CreateRequest(t *testing.T) {
	f := newFixture(t)

	var stored *models.GDPRRequest
	f.repo.EXPECT().CreateRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.GDPRRequest) error {
			stored = r
			r.ID = 3
			return nil
		})

	err := f.service.CreateRequest(context.Background(), CreateInput{
		Email:       " Sam@Example.com ",
		RequestType: models.GDPRRequestErasure,
		IPAddress:   "203.0.113.9",
	})
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, "sam@example.com", stored.Email)
	assert.Equal(t, models.GDPRStatusPending, stored.Status)
	assert.Equal(t, testNow.Add(48*time.Hour), stored.ExpiresAt)
	_, parseErr := uuid.Parse(stored.VerificationToken)
	assert.NoError(t, parseErr)

	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0]
	assert.Equal(t, []string{"sam@example.com"}, msg.To)
	assert.Contains(t, msg.Text, "https://hds.test/privacy/verify?token="+stored.VerificationToken)
	assert.Contains(t, msg.Text, "request to erase")
}

func TestGDPRService_CreateRequest_EmailFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("resend down")
	f.repo.EXPECT().CreateRequest(gomock.Any(), gomock.Any()).Return(nil)

	err := f.service.CreateRequest(context.Background(), CreateInput{Email: "sam@example.com", RequestType: models.GDPRRequestAccess})
	assert.NoError(t, err)
}

func TestGDPRService_CreateRequest_DatabaseFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().CreateRequest(gomock.Any(), gomock.Any()).Return(apperrors.NewDatabaseError("unable to store privacy request", nil))

	err := f.service.CreateRequest(context.Background(), CreateInput{Email: "sam@example.com", RequestType: models.GDPRRequestAccess})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabaseError))
	assert.Empty(t, f.sender.sent)
}

func TestGDPRService_Verify_Rejections(t *testing.T) {
	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().FindByToken(gomock.Any(), "nope").Return(nil, NewRequestNotFoundError(gorm.ErrRecordNotFound))

		_, err := f.service.Verify(context.Background(), "nope")
		assert.Equal(t, 404, apperrors.HTTPStatusCode(err))
	})

	t.Run("already completed", func(t *testing.T) {
		f := newFixture(t)
		request := pendingRequest(models.GDPRRequestAccess)
		request.Status = models.GDPRStatusCompleted
		f.repo.EXPECT().FindByToken(gomock.Any(), "tok-9").Return(request, nil)

		_, err := f.service.Verify(context.Background(), "tok-9")
		assert.Equal(t, 409, apperrors.HTTPStatusCode(err))
	})

	t.Run("expired is persisted", func(t *testing.T) {
		f := newFixture(t)
		request := pendingRequest(models.GDPRRequestErasure)
		request.ExpiresAt = testNow.Add(-time.Minute)
		f.repo.EXPECT().FindByToken(gomock.Any(), "tok-9").Return(request, nil)
		f.repo.EXPECT().SaveRequest(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *models.GDPRRequest) error {
				assert.Equal(t, models.GDPRStatusExpired, r.Status)
				return nil
			})

		_, err := f.service.Verify(context.Background(), "tok-9")
		assert.Equal(t, 410, apperrors.HTTPStatusCode(err))
	})
}

func expectExportReads(f *fixture, emailAddr string) {
	created := testNow.Add(-24 * time.Hour)

	contact := models.Contact{Name: "Sam", Email: emailAddr, Message: "Need a new site"}
	contact.CreatedAt = created
	lead := models.Lead{
		Email:      emailAddr,
		Source:     models.LeadSourceContactForm,
		Score:      40,
		Status:     models.LeadStatusNew,
		Notes:      []models.LeadNote{{Author: "ops", Body: "called", CreatedAt: created}},
		Activities: []models.LeadActivity{{Kind: models.ActivityCreated, CreatedAt: created}},
	}
	lead.CreatedAt = created

	f.repo.EXPECT().FindContacts(gomock.Any(), emailAddr).Return([]models.Contact{contact}, nil)
	f.repo.EXPECT().FindLeads(gomock.Any(), emailAddr).Return([]models.Lead{lead}, nil)
	f.repo.EXPECT().FindSubscriber(gomock.Any(), emailAddr).Return(nil, nil)
	f.repo.EXPECT().FindConsentRecords(gomock.Any(), emailAddr).Return([]models.ConsentRecord{{VisitorID: "v1", Necessary: true, CreatedAt: created}}, nil)
	f.repo.EXPECT().FindAnalyticsEvents(gomock.Any(), emailAddr).Return([]models.AnalyticsEvent{
		{Name: models.EventPageView, DistinctID: "v1", Properties: `{"referrer":"google"}`, OccurredAt: created},
		{Name: models.EventCTAClick, DistinctID: "v1", Properties: "not json", OccurredAt: created},
	}, nil)
	f.repo.EXPECT().FindEnrollments(gomock.Any(), emailAddr).Return(nil, nil)
}

func TestGDPRService_Verify_Access(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().FindByToken(gomock.Any(), "tok-9").Return(pendingRequest(models.GDPRRequestAccess), nil)
	expectExportReads(f, "sam@example.com")

	var saved models.GDPRRequest
	f.repo.EXPECT().SaveRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.GDPRRequest) error {
			saved = *r
			return nil
		})

	response, err := f.service.Verify(context.Background(), "tok-9")
	require.NoError(t, err)

	assert.Equal(t, models.GDPRStatusCompleted, response.Status)
	assert.Nil(t, response.Erasure)
	require.NotNil(t, response.Export)
	assert.Equal(t, ExportFormatVersion, response.Export.FormatVersion)
	assert.Len(t, response.Export.Contacts, 1)
	require.Len(t, response.Export.Leads, 1)
	assert.Len(t, response.Export.Leads[0].Notes, 1)
	assert.Nil(t, response.Export.Newsletter)
	assert.NotNil(t, response.Export.SequenceEnrollments)

	assert.Equal(t, models.GDPRStatusCompleted, saved.Status)
	require.NotNil(t, saved.CompletedAt)
	assert.Equal(t, testNow, *saved.CompletedAt)
	assert.Equal(t, "exported analytics_events=2 consent_records=1 contacts=1 leads=1 newsletter_subscribers=0 sequence_enrollments=0", saved.ResultSummary)
	assert.Empty(t, f.sender.sent)
}

func TestGDPRService_Export_Document(t *testing.T) {
	f := newFixture(t)
	expectExportReads(f, "sam@example.com")

	document, err := f.service.Export(context.Background(), "SAM@example.com")
	require.NoError(t, err)

	raw, err := json.Marshal(document)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"email", "exported_at", "format_version", "contacts", "leads", "newsletter", "consent_records", "analytics_events", "sequence_enrollments"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "2026-05-04T10:00:00Z", decoded["exported_at"])

	events := decoded["analytics_events"].([]any)
	assert.Equal(t, map[string]any{"referrer": "google"}, events[0].(map[string]any)["properties"])
	assert.Equal(t, "not json", events[1].(map[string]any)["properties"])
}

func TestGDPRService_Export_FailsWhenAnyReadFails(t *testing.T) {
	f := newFixture(t)
	dbErr := apperrors.NewDatabaseError("failed to export leads", errors.New("conn reset"))

	f.repo.EXPECT().FindContacts(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	f.repo.EXPECT().FindLeads(gomock.Any(), gomock.Any()).Return(nil, dbErr)
	f.repo.EXPECT().FindSubscriber(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	f.repo.EXPECT().FindConsentRecords(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	f.repo.EXPECT().FindAnalyticsEvents(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	f.repo.EXPECT().FindEnrollments(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	_, err := f.service.Export(context.Background(), "sam@example.com")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabaseError))
}

func TestGDPRService_Verify_Erasure(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().FindByToken(gomock.Any(), "tok-9").Return(pendingRequest(models.GDPRRequestErasure), nil)
	f.repo.EXPECT().Erase(gomock.Any(), "sam@example.com").Return(map[string]int64{
		TableContacts:       2,
		TableLeads:          1,
		TableLeadActivities: 3,
	}, nil)

	var summary string
	var saved models.GDPRRequest
	f.repo.EXPECT().SaveRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.GDPRRequest) error {
			summary = r.ResultSummary
			saved = *r
			return nil
		})

	response, err := f.service.Verify(context.Background(), "tok-9")
	require.NoError(t, err)

	require.NotNil(t, response.Erasure)
	assert.Equal(t, int64(6), response.Erasure.Total)
	assert.Nil(t, response.Export)
	assert.Equal(t, "deleted contacts=2 lead_activities=3 leads=1", summary)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, []string{"sam@example.com"}, f.sender.sent[0].To)
	assert.Contains(t, f.sender.sent[0].Text, "We deleted 6 records")

	assert.Equal(t, PseudonymizeEmail("sam@example.com"), saved.Email)
	assert.Empty(t, saved.IPAddress)
}

func TestGDPRService_Verify_ErasureFailureKeepsRequestPending(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().FindByToken(gomock.Any(), "tok-9").Return(pendingRequest(models.GDPRRequestErasure), nil)
	f.repo.EXPECT().Erase(gomock.Any(), "sam@example.com").Return(nil, apperrors.NewDatabaseError("unable to erase personal data", nil))

	_, err := f.service.Verify(context.Background(), "tok-9")
	assert.Equal(t, 500, apperrors.HTTPStatusCode(err))
	assert.Empty(t, f.sender.sent)
}

func TestGDPRService_ListRequests_ClampsPaging(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().ListRequests(gomock.Any(), models.GDPRStatusPending, 100, 0).
		Return([]models.GDPRRequest{*pendingRequest(models.GDPRRequestAccess)}, int64(1), nil)

	response, err := f.service.ListRequests(context.Background(), &ListRequestsQuery{Status: models.GDPRStatusPending, Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 100, response.Limit)
	require.Len(t, response.Items, 1)
	assert.Equal(t, "2026-05-04T11:00:00Z", response.Items[0].ExpiresAt)
	assert.Nil(t, response.Items[0].CompletedAt)
}
