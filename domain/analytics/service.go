package analytics

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/internal/posthog"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// EventForwarder ships events to the product analytics provider.
type EventForwarder interface {
	Enabled() bool
	Capture(ctx context.Context, event posthog.Event) error
}

type Options struct {
	HighValueThreshold int
}

type AnalyticsService interface {
	Track(ctx context.Context, req *EventRequest) (*EventResponse, error)
	// Aggregate recomputes the rollup for the UTC day containing day and
	// overwrites any rows already stored for it.
	Aggregate(ctx context.Context, day time.Time) (*AggregateResult, error)
	Daily(ctx context.Context, query *DailyQuery) (*DailyResponse, error)
}

type analyticsService struct {
	logger    *log.Logger
	repo      AnalyticsRepository
	forwarder EventForwarder
	opts      Options
	now       func() time.Time
}

func NewAnalyticsService(logger *log.Logger, repo AnalyticsRepository, forwarder EventForwarder, opts Options) AnalyticsService {
	if opts.HighValueThreshold <= 0 {
		opts.HighValueThreshold = constants.DefaultLeadNotificationThreshold
	}
	return &analyticsService{
		logger:    logger,
		repo:      repo,
		forwarder: forwarder,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *analyticsService) Track(ctx context.Context, req *EventRequest) (*EventResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}
	if req.Name == models.EventWebVital {
		if err := validateWebVital(req.Properties); err != nil {
			return nil, err
		}
	}

	var properties string
	if len(req.Properties) > 0 {
		raw, err := json.Marshal(req.Properties)
		if err != nil {
			return nil, apperrors.NewInvalidRequestError("properties must be a JSON object", err)
		}
		properties = string(raw)
	}

	event := &models.AnalyticsEvent{
		Name:       req.Name,
		DistinctID: strings.TrimSpace(req.DistinctID),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Path:       req.Path,
		Properties: properties,
		OccurredAt: s.now().UTC(),
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		logger.Error("Failed to store analytics event", "event", req.Name, "error", err)
		return nil, err
	}

	response := &EventResponse{ID: event.ID}
	if s.forwarder != nil && s.forwarder.Enabled() {
		forwarded := make(map[string]any, len(req.Properties)+1)
		for k, v := range req.Properties {
			forwarded[k] = v
		}
		if event.Path != "" {
			forwarded["$current_url"] = event.Path
		}
		err := s.forwarder.Capture(ctx, posthog.Event{
			Name:       event.Name,
			DistinctID: event.DistinctID,
			Properties: forwarded,
			Timestamp:  event.OccurredAt,
		})
		if err != nil {
			logger.Warn("Failed to forward analytics event", "event", event.Name, "error", err)
		} else {
			response.Forwarded = true
		}
	}

	return response, nil
}

func validateWebVital(properties map[string]any) error {
	metric, _ := properties["metric"].(string)
	if !isWebVitalMetric(metric) {
		return NewInvalidWebVitalError("metric must be one of " + strings.Join(WebVitalMetrics, ", "))
	}
	value, ok := properties["value"].(float64)
	if !ok || math.IsNaN(value) || value < 0 {
		return NewInvalidWebVitalError("value must be a non-negative number")
	}
	return nil
}

func isWebVitalMetric(metric string) bool {
	for _, m := range WebVitalMetrics {
		if m == metric {
			return true
		}
	}
	return false
}

func (s *analyticsService) Aggregate(ctx context.Context, day time.Time) (*AggregateResult, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	start, end := dayBounds(day)
	date := start.Format(constants.DateFormat)

	var (
		pageViews, visitors, leadsCreated int64
		contacts, signups, highValue      int64
		vitals                            []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { pageViews, err = s.repo.CountEvents(gctx, models.EventPageView, start, end); return })
	g.Go(func() (err error) { visitors, err = s.repo.CountDistinctVisitors(gctx, start, end); return })
	g.Go(func() (err error) { leadsCreated, err = s.repo.CountLeads(gctx, start, end, 0); return })
	g.Go(func() (err error) {
		highValue, err = s.repo.CountLeads(gctx, start, end, s.opts.HighValueThreshold)
		return
	})
	g.Go(func() (err error) { contacts, err = s.repo.CountContacts(gctx, start, end); return })
	g.Go(func() (err error) { signups, err = s.repo.CountSubscribers(gctx, start, end); return })
	g.Go(func() (err error) { vitals, err = s.repo.WebVitalProperties(gctx, start, end); return })
	if err := g.Wait(); err != nil {
		logger.Error("Failed to read analytics rollup inputs", "date", date, "error", err)
		return nil, err
	}

	values := map[string]float64{
		MetricPageViews:         float64(pageViews),
		MetricUniqueVisitors:    float64(visitors),
		MetricLeadsCreated:      float64(leadsCreated),
		MetricContactsReceived:  float64(contacts),
		MetricNewsletterSignups: float64(signups),
		MetricHighValueLeads:    float64(highValue),
	}
	for metric, avg := range averageWebVitals(vitals) {
		values[webVitalMetricPrefix+strings.ToLower(metric)+"_avg"] = avg
	}

	rows := make([]models.DailyMetric, 0, len(values))
	for metric, value := range values {
		rows = append(rows, models.DailyMetric{Date: date, Metric: metric, Value: value})
	}
	if err := s.repo.UpsertDailyMetrics(ctx, rows); err != nil {
		logger.Error("Failed to store analytics rollup", "date", date, "error", err)
		return nil, err
	}

	logger.Info("Analytics aggregated", "date", date, "page_views", pageViews, "leads_created", leadsCreated)
	return &AggregateResult{Date: date, Metrics: values}, nil
}

// averageWebVitals averages values per metric. Rows that do not parse are skipped.
func averageWebVitals(properties []string) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, raw := range properties {
		if !gjson.Valid(raw) {
			continue
		}
		metric := gjson.Get(raw, "metric").String()
		value := gjson.Get(raw, "value")
		if !isWebVitalMetric(metric) || value.Type != gjson.Number {
			continue
		}
		sums[metric] += value.Float()
		counts[metric]++
	}

	averages := make(map[string]float64, len(sums))
	for metric, sum := range sums {
		averages[metric] = math.Round(sum/float64(counts[metric])*1000) / 1000
	}
	return averages
}

func (s *analyticsService) Daily(ctx context.Context, query *DailyQuery) (*DailyResponse, error) {
	if query == nil {
		query = &DailyQuery{}
	}

	today, _ := dayBounds(s.now())
	to := today
	if query.To != "" {
		parsed, err := time.Parse(constants.DateFormat, query.To)
		if err != nil {
			return nil, NewInvalidRangeError("to must be YYYY-MM-DD")
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -29)
	if query.From != "" {
		parsed, err := time.Parse(constants.DateFormat, query.From)
		if err != nil {
			return nil, NewInvalidRangeError("from must be YYYY-MM-DD")
		}
		from = parsed
	}

	if from.After(to) {
		return nil, NewInvalidRangeError("from is after to")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > MaxDailyRange {
		return nil, NewInvalidRangeError("at most 92 days can be requested")
	}

	fromDate, toDate := from.Format(constants.DateFormat), to.Format(constants.DateFormat)
	rows, err := s.repo.ListDailyMetrics(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	response := &DailyResponse{From: fromDate, To: toDate, Days: []DailyMetrics{}}
	for _, row := range rows {
		n := len(response.Days)
		if n == 0 || response.Days[n-1].Date != row.Date {
			response.Days = append(response.Days, DailyMetrics{Date: row.Date, Metrics: map[string]float64{}})
			n++
		}
		response.Days[n-1].Metrics[row.Metric] = row.Value
	}

	return response, nil
}
