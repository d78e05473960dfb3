package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/onboarding.space/internal/platform/id"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName            = "github.com/louisbranch/onboarding.space/internal/services/onboarding/app"
	defaultDispatchWorker = 8
	// maxBatchEvents caps one batch request.
	maxBatchEvents = 100
)

// EventHandler handles one inbound event.
type EventHandler interface {
	Handle(ctx context.Context, event domain.InboundEvent) (domain.Result, error)
}

// DispatcherConfig tunes event dispatch.
type DispatcherConfig struct {
	// Workers bounds concurrent events within one batch.
	Workers int
	Clock   func() time.Time
	Tracer  trace.Tracer
}

// Dispatcher runs inbound events through the onboarding service, tracing
// each one and recording its attempt.
type Dispatcher struct {
	handler  EventHandler
	recorder AttemptRecorder
	workers  int
	clock    func() time.Time
	tracer   trace.Tracer
}

// NewDispatcher builds a dispatcher. A nil recorder skips attempt logging.
func NewDispatcher(handler EventHandler, recorder AttemptRecorder, cfg DispatcherConfig) (*Dispatcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("event handler is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultDispatchWorker
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	return &Dispatcher{
		handler:  handler,
		recorder: recorder,
		workers:  cfg.Workers,
		clock:    cfg.Clock,
		tracer:   cfg.Tracer,
	}, nil
}

// Dispatch handles event, assigning an id when the caller sent none.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.InboundEvent) (domain.InboundEvent, domain.Result, error) {
	if strings.TrimSpace(event.ID) == "" {
		eventID, err := id.NewID()
		if err != nil {
			return event, domain.Result{}, fmt.Errorf("generate event id: %w", err)
		}
		event.ID = eventID
	}

	ctx, span := d.tracer.Start(ctx, "onboarding.dispatch", trace.WithAttributes(
		attribute.String("onboarding.event.id", event.ID),
		attribute.String("onboarding.event.type", event.Type),
	))
	defer span.End()

	result, err := d.handler.Handle(ctx, event)
	outcome := attemptOutcome(result, err)
	span.SetAttributes(attribute.String("onboarding.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if result.NotifyErr != nil {
		span.RecordError(result.NotifyErr)
	}

	d.record(ctx, event, outcome, failure(err, result))
	return event, result, err
}

// DispatchBatch handles events concurrently on a bounded pool. Results keep
// the input order; events for the same contributor are serialized by the
// service's own locking.
func (d *Dispatcher) DispatchBatch(ctx context.Context, events []domain.InboundEvent) ([]domain.HandledEvent, error) {
	if len(events) > maxBatchEvents {
		return nil, fmt.Errorf("batch has %d events, limit is %d", len(events), maxBatchEvents)
	}
	results := make([]domain.HandledEvent, len(events))
	p := pool.New().WithMaxGoroutines(d.workers)
	for i, event := range events {
		p.Go(func() {
			handled, result, err := d.Dispatch(ctx, event)
			results[i] = domain.HandledEvent{Event: handled, Result: result, Err: err}
		})
	}
	p.Wait()
	return results, nil
}

func (d *Dispatcher) record(ctx context.Context, event domain.InboundEvent, outcome string, lastError string) {
	if d.recorder == nil {
		return
	}
	err := d.recorder.RecordAttempt(context.WithoutCancel(ctx), Attempt{
		EventID:    event.ID,
		EventType:  event.Type,
		ChatUserID: event.ChatUserID,
		Outcome:    outcome,
		Error:      lastError,
		CreatedAt:  d.clock().UTC(),
	})
	if err != nil {
		log.Printf("record onboarding attempt %s: %v", event.ID, err)
	}
}

func failure(err error, result domain.Result) string {
	switch {
	case err != nil:
		return err.Error()
	case result.NotifyErr != nil:
		return result.NotifyErr.Error()
	default:
		return ""
	}
}
