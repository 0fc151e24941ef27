package relay

import (
	"context"
	"sort"
	"sync"
	"time"

	"dmrelay/internal/constants"
	"dmrelay/internal/logger"
	"dmrelay/pkg/metrics"
)

// Report summarises one background broadcast.
type Report struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	Total       int        `json:"total"`
	Delivered   int        `json:"delivered"`
	RateLimited int        `json:"rate_limited"`
	Failed      int        `json:"failed"`
	Running     bool       `json:"running"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// ReportStore keeps recent reports in memory. Finished reports expire
// after ttl and the oldest finished ones are evicted past max entries.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]*Report
	max     int
	ttl     time.Duration
}

func NewReportStore(max int, ttl time.Duration) *ReportStore {
	if max <= 0 {
		max = constants.DefaultMaxReports
	}
	if ttl <= 0 {
		ttl = constants.DefaultReportRetention
	}
	return &ReportStore{
		reports: make(map[string]*Report),
		max:     max,
		ttl:     ttl,
	}
}

func (s *ReportStore) Put(report Report) {
	s.mu.Lock()
	r := report
	s.reports[report.ID] = &r
	s.mu.Unlock()

	s.cleanup(time.Now())
}

// Update applies fn to the stored report and returns the result.
func (s *ReportStore) Update(id string, fn func(*Report)) (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return Report{}, false
	}
	fn(r)
	return *r, true
}

// Get returns a stored report. Finished reports past the retention are
// treated as gone even before the next Put sweeps them.
func (s *ReportStore) Get(id string) (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok || s.expired(r, time.Now()) {
		return Report{}, false
	}
	return *r, true
}

func (s *ReportStore) expired(r *Report, now time.Time) bool {
	return r.FinishedAt != nil && now.Sub(*r.FinishedAt) > s.ttl
}

func (s *ReportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

func (s *ReportStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.reports {
		if s.expired(r, now) {
			delete(s.reports, id)
		}
	}

	over := len(s.reports) - s.max
	if over <= 0 {
		return
	}

	type candidate struct {
		id string
		t  time.Time
	}
	candidates := make([]candidate, 0, len(s.reports))
	for id, r := range s.reports {
		if r.Running {
			continue
		}
		t := r.StartedAt
		if r.FinishedAt != nil {
			t = *r.FinishedAt
		}
		candidates = append(candidates, candidate{id: id, t: t})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].t.Before(candidates[j].t)
	})

	for i := 0; i < len(candidates) && over > 0; i++ {
		delete(s.reports, candidates[i].id)
		over--
	}
}

// LogSink writes finished reports to the service log.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) PublishReport(ctx context.Context, report Report) error {
	s.logger.InfowCtx(ctx, "Broadcast finished",
		"broadcast_id", report.ID,
		"target", report.Target,
		"total", report.Total,
		"delivered", report.Delivered,
		"rate_limited", report.RateLimited,
		"failed", report.Failed,
	)
	metrics.IncReportPublished("log", "success")
	return nil
}
