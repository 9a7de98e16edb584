// Package dashboard caches the analytics summary and the advanced
// metrics shown on the dashboard.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/analytics"
	"github.com/ashraf950/timesheet-client/internal/core/state"
	"github.com/ashraf950/timesheet-client/internal/normalize"
)

const OpMetrics = "metrics"

const (
	MsgSummaryFailed = "Failed to fetch dashboard summary"
	MsgMetricsFailed = "Failed to fetch advanced metrics"
)

type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
}

type Snapshot struct {
	state.RecordSnapshot[analytics.Summary]
	Metrics    analytics.AdvancedMetrics `json:"advancedMetrics"`
	MetricsOps map[string]state.Status   `json:"metricsOps,omitempty"`
}

// Op returns the status of an operation on the advanced metrics.
func (s Snapshot) Op(name string) state.Status {
	return s.MetricsOps[name]
}

type Store struct {
	api     Backend
	logger  *slog.Logger
	summary *state.Record[analytics.Summary]
	metrics *state.Record[analytics.AdvancedMetrics]
}

func NewStore(api Backend, logger *slog.Logger) *Store {
	return &Store{
		api:     api,
		logger:  logger,
		summary: state.NewRecord(analytics.Summary{}),
		metrics: state.NewRecord(analytics.EmptyMetrics(), OpMetrics),
	}
}

// FetchSummary loads the KPI block. On failure the previous summary
// stays in place next to the error.
func (s *Store) FetchSummary(ctx context.Context) error {
	s.summary.Begin()

	raw, err := s.api.Get(ctx, "/analytics/summary", nil)
	if err != nil {
		s.logger.Warn("failed to fetch dashboard summary", "error", err)
		s.summary.Fail(state.FailureFrom(err, MsgSummaryFailed))
		return err
	}

	summary, ok := normalize.Record[analytics.Summary](raw, "summary")
	if !ok {
		summary = analytics.Summary{}
	}
	s.summary.Set(summary)
	return nil
}

// FetchAdvancedMetrics loads the advanced metrics. A backend that does
// not serve them (404) yields placeholder metrics rather than an error.
// Other failures keep the metrics already loaded.
func (s *Store) FetchAdvancedMetrics(ctx context.Context) error {
	s.metrics.BeginOp(OpMetrics)

	raw, err := s.api.Get(ctx, "/analytics/advanced-metrics", nil)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode == http.StatusNotFound {
			s.logger.Info("advanced metrics endpoint not available")
			s.metrics.Set(analytics.UnavailableMetrics())
			s.metrics.CompleteOp(OpMetrics)
			return nil
		}
		s.logger.Warn("failed to fetch advanced metrics", "error", err)
		s.metrics.FailOp(OpMetrics, state.FailureFrom(err, MsgMetricsFailed))
		return err
	}

	metrics, ok := normalize.Record[analytics.AdvancedMetrics](raw, "metrics")
	if !ok {
		metrics = analytics.EmptyMetrics()
	}
	s.metrics.Set(metrics)
	s.metrics.CompleteOp(OpMetrics)
	return nil
}

func (s *Store) ClearErrors() {
	s.summary.ClearErrors()
	s.metrics.ClearErrors()
}

func (s *Store) Summary() analytics.Summary {
	return s.summary.Value()
}

func (s *Store) Snapshot() Snapshot {
	metrics := s.metrics.Snapshot()
	return Snapshot{
		RecordSnapshot: s.summary.Snapshot(),
		Metrics:        metrics.Value,
		MetricsOps:     metrics.Ops,
	}
}
