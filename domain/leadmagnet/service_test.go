package leadmagnet

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/hudsondigital/hds-platform/domain/leads"
	"github.com/hudsondigital/hds-platform/domain/newsletter"
	"github.com/hudsondigital/hds-platform/domain/sequences"
	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLeads struct {
	mu         sync.Mutex
	err        error
	captured   []leads.CaptureInput
	activities []string
}

func (s *stubLeads) Capture(_ context.Context, in leads.CaptureInput) (*leads.CaptureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = append(s.captured, in)
	if s.err != nil {
		return nil, s.err
	}
	lead := &models.Lead{Email: in.Email}
	lead.ID = 21
	return &leads.CaptureResult{Lead: lead, Created: true}, nil
}

func (s *stubLeads) RecordActivity(_ context.Context, _ uint, kind, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, kind+":"+detail)
	return nil
}

type stubEnroller struct {
	mu        sync.Mutex
	sequences []string
}

func (s *stubEnroller) Enroll(_ context.Context, _, _, sequence string) (*models.SequenceEnrollment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences = append(s.sequences, sequence)
	return nil, false, errors.New("enrollment store down")
}

type stubSubscriber struct {
	mu     sync.Mutex
	inputs []newsletter.SubscribeInput
}

func (s *stubSubscriber) Subscribe(_ context.Context, in newsletter.SubscribeInput) (*newsletter.SubscribeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	return &newsletter.SubscribeResponse{Email: in.Email, Outcome: newsletter.OutcomeSubscribed}, nil
}

type stubSender struct {
	mu   sync.Mutex
	err  error
	sent []email.Message
}

func (s *stubSender) Send(_ context.Context, msg email.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "id", nil
}

func (s *stubSender) Enabled() bool { return true }

type fixture struct {
	leads      *stubLeads
	enroller   *stubEnroller
	subscriber *stubSubscriber
	sender     *stubSender
	service    LeadMagnetService
}

func newFixture() *fixture {
	f := &fixture{
		leads:      &stubLeads{},
		enroller:   &stubEnroller{},
		subscriber: &stubSubscriber{},
		sender:     &stubSender{},
	}
	f.service = NewLeadMagnetService(log.NewDiscardLogger(), f.leads, f.enroller, f.subscriber, f.sender, nil, "https://hds.test/")
	return f
}

func TestLeadMagnetService_Request(t *testing.T) {
	f := newFixture()

	response, err := f.service.Request(context.Background(), &LeadMagnetRequest{
		Email:           "Sam@Example.com",
		FirstName:       "sam",
		Resource:        "seo-starter-guide",
		NewsletterOptIn: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://hds.test/downloads/seo-starter-guide.pdf", response.DownloadURL)
	assert.Equal(t, "SEO Starter Guide", response.Resource.Title)
	assert.True(t, response.EmailSent)

	require.Len(t, f.leads.captured, 1)
	assert.Equal(t, "sam@example.com", f.leads.captured[0].Email)
	assert.Equal(t, models.LeadSourceLeadMagnet, f.leads.captured[0].Source)
	assert.Equal(t, []string{"email_sent:lead-magnet-delivery:seo-starter-guide"}, f.leads.activities)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "Your download: SEO Starter Guide", f.sender.sent[0].Subject)
	assert.Contains(t, f.sender.sent[0].Text, response.DownloadURL)

	// Enrollment failure is logged only.
	assert.Equal(t, []string{sequences.LeadMagnetNurture}, f.enroller.sequences)
	require.Len(t, f.subscriber.inputs, 1)
	assert.Equal(t, models.LeadSourceLeadMagnet, f.subscriber.inputs[0].Source)
}

func TestLeadMagnetService_Request_DownloadSurvivesFailures(t *testing.T) {
	f := newFixture()
	f.sender.err = errors.New("resend down")
	f.leads.err = apperrors.NewDatabaseError("unable to create lead", nil)

	response, err := f.service.Request(context.Background(), &LeadMagnetRequest{
		Email:    "sam@example.com",
		Resource: "website-audit-checklist",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://hds.test/downloads/website-audit-checklist.pdf", response.DownloadURL)
	assert.False(t, response.EmailSent)
	assert.Empty(t, f.leads.activities)
	assert.Empty(t, f.subscriber.inputs)
}

func TestLeadMagnetService_Request_UnknownResource(t *testing.T) {
	f := newFixture()

	_, err := f.service.Request(context.Background(), &LeadMagnetRequest{Email: "a@b.co", Resource: "free-money"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
	assert.Empty(t, f.leads.captured)
}

func TestCatalog(t *testing.T) {
	resources := Resources()
	require.Len(t, resources, 3)

	keys := make([]string, 0, len(resources))
	for _, r := range resources {
		keys = append(keys, r.Key)
		assert.NotEmpty(t, r.Title)
		assert.True(t, strings.HasSuffix(r.File, ".pdf"))
	}
	assert.Equal(t, []string{"saas-launch-playbook", "seo-starter-guide", "website-audit-checklist"}, keys)

	assert.ElementsMatch(t, strings.Fields(ResourceOptions), keys)

	field, _ := reflect.TypeOf(LeadMagnetRequest{}).FieldByName("Resource")
	assert.Contains(t, field.Tag.Get("binding"), "oneof="+ResourceOptions)
}
