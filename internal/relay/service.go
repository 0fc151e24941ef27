package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"dmrelay/internal/config"
	"dmrelay/internal/constants"
	"dmrelay/internal/cooldown"
	"dmrelay/internal/logger"
	apperrors "dmrelay/pkg/errors"
	"dmrelay/pkg/logging"
	"dmrelay/pkg/metrics"
	"dmrelay/pkg/tracing"
)

// Service resolves targets and delivers payloads. Send waits for every
// delivery; Broadcast acknowledges once the target is resolved and
// delivers in the background.
type Service struct {
	resolver    *Resolver
	deliverer   *Deliverer
	tracker     cooldown.Tracker
	reports     *ReportStore
	sink        ReportSink
	concurrency int
	logger      logger.Logger

	// root is cancelled when Shutdown gives up waiting; every tracked
	// operation derives its context from it.
	root       context.Context
	cancelRoot context.CancelFunc
	mu         sync.Mutex
	closing    bool
	wg         sync.WaitGroup
	// sinkMu is held for reading while a report is published so Shutdown
	// can wait out publishes that started before cancellation.
	sinkMu sync.RWMutex
}

func NewService(directory Directory, messenger Messenger, tracker cooldown.Tracker, sink ReportSink, cfg config.RelayConfig, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger()
	}
	window := cfg.CooldownWindow
	if window <= 0 {
		window = constants.DefaultCooldownWindow
	}
	root, cancel := context.WithCancel(context.Background())
	return &Service{
		root:        root,
		cancelRoot:  cancel,
		resolver:    NewResolver(directory),
		deliverer:   NewDeliverer(tracker, messenger, window, log),
		tracker:     tracker,
		reports:     NewReportStore(cfg.MaxReports, cfg.ReportRetention),
		sink:        sink,
		concurrency: cfg.BroadcastConcurrency,
		logger:      log,
	}
}

func validatePayload(payload Payload) error {
	if payload.IsEmpty() {
		return apperrors.ErrValidation.WithMessage("message or embeds are required")
	}
	return nil
}

// track registers an in-flight operation. The returned context is also
// cancelled when Shutdown stops waiting, and done must be called once the
// operation is over.
func (s *Service) track(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil, nil, errShuttingDown()
	}
	s.wg.Add(1)
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.root, cancel)
	return ctx, func() {
		stop()
		cancel()
		s.wg.Done()
	}, nil
}

// Send delivers to every recipient in order and returns how many succeeded.
// A single target's failure is returned as the error; failures inside a
// group or everyone target are skipped.
func (s *Service) Send(ctx context.Context, spec TargetSpec, payload Payload) (int, error) {
	ctx, done, err := s.track(ctx)
	if err != nil {
		return 0, err
	}
	defer done()

	ctx, span := tracing.GetTracer(constants.ServiceName).Start(ctx, "relay.send")
	defer span.End()
	span.SetAttributes(attribute.String("relay.target", spec.Kind.String()))

	if err := validatePayload(payload); err != nil {
		return 0, err
	}

	recipients, err := s.resolver.Resolve(ctx, spec)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, id := range recipients {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if err := s.deliverer.Deliver(ctx, id, payload); err != nil {
			if spec.Kind == TargetSingle {
				span.RecordError(err)
				return 0, err
			}
			s.logger.DebugwCtx(ctx, "Skipping recipient",
				"recipient_id", id,
				"error", err,
			)
			continue
		}
		delivered++
	}

	span.SetAttributes(attribute.Int("relay.delivered", delivered))
	return delivered, nil
}

// Broadcast resolves spec and starts delivering in the background. The
// returned report is the initial snapshot; progress is visible through
// Report and the final report goes to the sink.
func (s *Service) Broadcast(ctx context.Context, spec TargetSpec, payload Payload) (Report, error) {
	if err := validatePayload(payload); err != nil {
		return Report{}, err
	}

	recipients, err := s.resolver.Resolve(ctx, spec)
	if err != nil {
		return Report{}, err
	}

	id := uuid.New().String()
	runCtx, done, err := s.track(logging.WithBroadcastID(context.WithoutCancel(ctx), id))
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ID:        id,
		Target:    spec.String(),
		Total:     len(recipients),
		Running:   true,
		StartedAt: time.Now().UTC(),
	}
	s.reports.Put(report)
	metrics.BroadcastsTotal.WithLabelValues(spec.Kind.String()).Inc()

	go s.runBroadcast(runCtx, done, report.ID, recipients, payload)

	return report, nil
}

func (s *Service) runBroadcast(ctx context.Context, done func(), id string, recipients []string, payload Payload) {
	defer done()

	metrics.BroadcastsInFlight.Inc()
	defer metrics.BroadcastsInFlight.Dec()

	ctx, span := tracing.GetTracer(constants.ServiceName).Start(ctx, "relay.broadcast")
	defer span.End()
	span.SetAttributes(
		attribute.String("relay.broadcast_id", id),
		attribute.Int("relay.recipients", len(recipients)),
	)

	var delivered, rateLimited, failed atomic.Int64
	defer func() {
		s.finishBroadcast(ctx, id, int(delivered.Load()), int(rateLimited.Load()), int(failed.Load()))
	}()

	g := new(errgroup.Group)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for _, recipientID := range recipients {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failed.Add(1)
					s.logger.ErrorwCtx(ctx, "Broadcast delivery panicked",
						"recipient_id", recipientID,
						"error", apperrors.RecoverPanic(r),
					)
				}
			}()

			err := s.deliverer.Deliver(ctx, recipientID, payload)
			switch {
			case err == nil:
				delivered.Add(1)
			case apperrors.IsRateLimited(err):
				rateLimited.Add(1)
			default:
				failed.Add(1)
				s.logger.DebugwCtx(ctx, "Broadcast delivery failed",
					"recipient_id", recipientID,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) finishBroadcast(ctx context.Context, id string, delivered, rateLimited, failed int) {
	finished := time.Now().UTC()
	report, ok := s.reports.Update(id, func(r *Report) {
		r.Delivered = delivered
		r.RateLimited = rateLimited
		r.Failed = failed
		r.Running = false
		r.FinishedAt = &finished
	})
	if !ok {
		return
	}

	if s.sink == nil {
		return
	}
	s.sinkMu.RLock()
	defer s.sinkMu.RUnlock()
	if s.root.Err() != nil {
		// the sink may already be closed
		s.logger.WarnwCtx(ctx, "Broadcast interrupted by shutdown, report not published",
			"delivered", report.Delivered,
			"failed", report.Failed,
			"total", report.Total,
		)
		return
	}
	if err := s.sink.PublishReport(ctx, report); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to publish broadcast report", "error", err)
	}
}

// Report returns a broadcast report by id.
func (s *Service) Report(id string) (Report, bool) {
	return s.reports.Get(id)
}

func (s *Service) GroupNames(ctx context.Context) ([]string, error) {
	return s.resolver.GroupNames(ctx)
}

// Shutdown refuses new sends and waits for in-flight sends and broadcasts.
// When ctx ends first, the remaining deliveries are cancelled and their
// reports are not published.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	err := s.Wait(ctx)
	s.cancelRoot()

	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	return err
}

// Wait blocks until in-flight sends and broadcasts finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunCooldownMetrics refreshes the cooldown gauge every interval until ctx
// is cancelled.
func (s *Service) RunCooldownMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			size, err := s.tracker.Size(ctx)
			if err != nil {
				s.logger.DebugwCtx(ctx, "Failed to read cooldown size", "error", err)
				continue
			}
			metrics.SetCooldownEntries(size)
		}
	}
}
