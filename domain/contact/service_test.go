package contact

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/hudsondigital/hds-platform/domain/leads"
	"github.com/hudsondigital/hds-platform/domain/newsletter"
	"github.com/hudsondigital/hds-platform/domain/sequences"
	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stubLeads struct {
	mu         sync.Mutex
	result     *leads.CaptureResult
	err        error
	captured   []leads.CaptureInput
	activities []string
}

func (s *stubLeads) Capture(_ context.Context, in leads.CaptureInput) (*leads.CaptureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = append(s.captured, in)
	return s.result, s.err
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
	return &models.SequenceEnrollment{}, true, nil
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

func (s *stubSender) byTemplate(name string) *email.Message {
	for i := range s.sent {
		if s.sent[i].Template == name {
			return &s.sent[i]
		}
	}
	return nil
}

func validRequest() *ContactRequest {
	return &ContactRequest{
		Name:     " Jane Doe ",
		Email:    "Jane@Example.com",
		Company:  "Acme",
		Service:  "custom-software",
		Budget:   "50k-plus",
		Timeline: "asap",
		Message:  "We need a partner to rebuild our customer portal.",
	}
}

type fixture struct {
	repo       *MockContactRepository
	leads      *stubLeads
	enroller   *stubEnroller
	subscriber *stubSubscriber
	sender     *stubSender
	service    ContactService
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	lead := &models.Lead{Email: "jane@example.com", Score: 90}
	lead.ID = 11

	f := &fixture{
		repo:       NewMockContactRepository(ctrl),
		leads:      &stubLeads{result: &leads.CaptureResult{Lead: lead, Created: true, HighValue: true}},
		enroller:   &stubEnroller{},
		subscriber: &stubSubscriber{},
		sender:     &stubSender{},
	}
	f.service = NewContactService(log.NewDiscardLogger(), f.repo, f.leads, f.enroller, f.subscriber, f.sender, nil, Options{
		SiteURL:    "https://hds.test",
		AdminEmail: "team@hds.test",
	})
	return f
}

func expectStore(f *fixture, id uint) {
	f.repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *models.Contact) error {
			c.ID = id
			return nil
		})
	f.repo.EXPECT().LinkLead(gomock.Any(), id, uint(11)).Return(nil)
}

func TestContactService_Submit(t *testing.T) {
	f := newFixture(t)
	expectStore(f, 3)

	req := validRequest()
	req.NewsletterOptIn = true

	response, err := f.service.Submit(context.Background(), req, RequestMeta{IPAddress: "203.0.113.9", UserAgent: "test"})

	require.NoError(t, err)
	assert.Equal(t, &ContactResponse{ContactID: 3, LeadID: 11, LeadScore: 90, HighValue: true}, response)

	require.Len(t, f.leads.captured, 1)
	assert.Equal(t, "jane@example.com", f.leads.captured[0].Email)
	assert.Equal(t, "Jane Doe", f.leads.captured[0].Name)
	assert.Equal(t, models.LeadSourceContactForm, f.leads.captured[0].Source)

	confirmation := f.sender.byTemplate(email.TemplateContactConfirmation)
	require.NotNil(t, confirmation)
	assert.Equal(t, []string{"jane@example.com"}, confirmation.To)

	alert := f.sender.byTemplate(email.TemplateContactAdminAlert)
	require.NotNil(t, alert)
	assert.Equal(t, []string{"team@hds.test"}, alert.To)
	assert.Equal(t, "jane@example.com", alert.ReplyTo)
	assert.Contains(t, alert.Subject, "score 90")

	assert.Equal(t, []string{sequences.ContactFollowUp}, f.enroller.sequences)
	require.Len(t, f.subscriber.inputs, 1)
	assert.Equal(t, "Jane", f.subscriber.inputs[0].FirstName)
	assert.Equal(t, []string{"email_sent:contact-confirmation"}, f.leads.activities)
}

func TestContactService_Submit_EmailFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	expectStore(f, 4)
	f.sender.err = errors.New("resend down")

	response, err := f.service.Submit(context.Background(), validRequest(), RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, uint(4), response.ContactID)
	assert.Empty(t, f.leads.activities)
	assert.Empty(t, f.subscriber.inputs)
	assert.Len(t, f.enroller.sequences, 1)
}

func TestContactService_Submit_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperrors.NewDatabaseError("unable to store contact submission", nil))

	response, err := f.service.Submit(context.Background(), validRequest(), RequestMeta{})

	assert.Nil(t, response)
	assert.Equal(t, 500, apperrors.HTTPStatusCode(err))
	assert.Empty(t, f.leads.captured)
}

func TestContactService_Submit_LeadFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.leads.err = apperrors.NewDatabaseError("unable to create lead", nil)

	_, err := f.service.Submit(context.Background(), validRequest(), RequestMeta{})

	assert.Equal(t, 500, apperrors.HTTPStatusCode(err))
	assert.Empty(t, f.sender.sent)
}

func TestContactService_Submit_BlankName(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Name = "   "

	_, err := f.service.Submit(context.Background(), req, RequestMeta{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
}

func TestToContactModel(t *testing.T) {
	req := validRequest()
	req.SourcePage = " /services "

	model := ToContactModel(req, RequestMeta{IPAddress: "198.51.100.1", UserAgent: strings.Repeat("x", 600)})

	assert.Equal(t, "jane@example.com", model.Email)
	assert.Equal(t, "Jane Doe", model.Name)
	assert.Equal(t, "/services", model.SourcePage)
	assert.Len(t, model.UserAgent, 512)
	assert.Nil(t, model.LeadID)
}

func TestToContactModel_UserAgentKeepsValidUTF8(t *testing.T) {
	model := ToContactModel(validRequest(), RequestMeta{UserAgent: strings.Repeat("a", 511) + "é"})

	assert.True(t, utf8.ValidString(model.UserAgent))
	assert.Equal(t, strings.Repeat("a", 511), model.UserAgent)
}

func TestContactRequest_OptionTagsMatchScoring(t *testing.T) {
	typ := reflect.TypeOf(ContactRequest{})

	oneOf := func(field string) string {
		f, ok := typ.FieldByName(field)
		require.True(t, ok)
		for _, part := range strings.Split(f.Tag.Get("binding"), ",") {
			if strings.HasPrefix(part, "oneof=") {
				return strings.TrimPrefix(part, "oneof=")
			}
		}
		return ""
	}

	assert.Equal(t, leads.ServiceOptions, oneOf("Service"))
	assert.Equal(t, leads.BudgetOptions, oneOf("Budget"))
	assert.Equal(t, leads.TimelineOptions, oneOf("Timeline"))
}
