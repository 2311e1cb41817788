package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	metricsdb "nutriplan/internal/metrics/metrics_db"
	"nutriplan/internal/shared"
)

// UsageMetric is one recorded auxiliary model call.
type UsageMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store persists model usage to sqlite.
type Store struct {
	queries *metricsdb.Queries
	now     func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{queries: metricsdb.New(db), now: time.Now}
}

// Record saves m. A zero timestamp means now.
func (s *Store) Record(ctx context.Context, m UsageMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	err := s.queries.InsertUsageMetric(ctx, metricsdb.InsertUsageMetricParams{
		AgentName:        m.AgentName,
		Model:            m.Model,
		PromptTokens:     int64(m.PromptTokens),
		CompletionTokens: int64(m.CompletionTokens),
		LatencyMs:        m.LatencyMS,
		Timestamp:        normalize(ts),
	})
	if err != nil {
		return fmt.Errorf("failed to record usage for %s: %w", m.AgentName, err)
	}
	return nil
}

// RecordMeta records one call's metadata. Calls that consumed no tokens,
// such as fallbacks that never reached the model, are skipped.
func (s *Store) RecordMeta(ctx context.Context, meta shared.AgentMeta) error {
	if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
		return nil
	}
	return s.Record(ctx, UsageMetric{
		AgentName:        meta.AgentName,
		Model:            meta.Usage.Model,
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		LatencyMS:        meta.Latency.Milliseconds(),
	})
}

// DailyUsage is the token total for one UTC day.
type DailyUsage struct {
	Date             string `json:"date"`
	Executions       int    `json:"executions"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
}

// GetDailyUsage returns per-day totals for the last days days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := s.now().AddDate(0, 0, -days)
	rows, err := s.queries.GetDailyUsage(ctx, normalize(since))
	if err != nil {
		return nil, fmt.Errorf("failed to load daily usage: %w", err)
	}

	results := make([]DailyUsage, 0, len(rows))
	for _, r := range rows {
		results = append(results, DailyUsage{
			Date:             r.Day,
			Executions:       int(r.Executions),
			PromptTokens:     int(r.PromptTokens),
			CompletionTokens: int(r.CompletionTokens),
		})
	}
	return results, nil
}

// Cleanup removes records older than before and returns how many went.
func (s *Store) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.queries.DeleteUsageMetricsBefore(ctx, normalize(before))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up usage metrics: %w", err)
	}
	return n, nil
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
