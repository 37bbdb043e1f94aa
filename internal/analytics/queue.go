// Package analytics buffers telemetry events in process and delivers them
// to a remote sink one at a time, in enqueue order.
//
// Delivery is at-least-once and best effort: a failed event goes back to
// the head of the queue and the drain stops. Nothing is scheduled; the
// next Track restarts the drain, which retries the same head first. Events
// that are still queued when the process exits are lost.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrQueueClosed is logged when an event is tracked after Close.
var ErrQueueClosed = errors.New("analytics queue closed")

// Sink delivers one event per call.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, ev Event) error

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, ev Event) error { return f(ctx, ev) }

// State is the drain state of a Queue.
type State int

const (
	// Idle: nothing is queued and no drain is running.
	Idle State = iota
	// Draining: a drain goroutine owns delivery.
	Draining
	// Blocked: the head event failed; waiting for the next Track.
	Blocked
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	case Blocked:
		return "blocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Queue.
type Option func(*Queue)

// WithAmbient sets the source of url, referrer and user agent.
func WithAmbient(a Ambient) Option { return func(q *Queue) { q.ambient = a } }

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) Option { return func(q *Queue) { q.now = now } }

// WithLogger sets the logger used for delivery failures.
func WithLogger(l zerolog.Logger) Option { return func(q *Queue) { q.log = l } }

// WithTracer sets the tracer used for delivery spans.
func WithTracer(t trace.Tracer) Option { return func(q *Queue) { q.tracer = t } }

// Queue is the in-memory FIFO of pending events.
//
// At most one drain runs at a time. Transitions:
//
//	Idle     --Track-->            Draining
//	Blocked  --Track-->            Draining
//	Draining --queue empty-->      Idle
//	Draining --delivery failed-->  Blocked
type Queue struct {
	sink    Sink
	ambient Ambient
	now     func() time.Time
	log     zerolog.Logger
	tracer  trace.Tracer

	mu     sync.Mutex
	events []Event
	state  State
	done   chan struct{} // closed when the current drain ends
	closed bool
}

// NewQueue returns an idle queue delivering to sink.
func NewQueue(sink Sink, opts ...Option) *Queue {
	q := &Queue{
		sink:    sink,
		ambient: StaticAmbient{},
		now:     time.Now,
		log:     log.Logger,
		tracer:  otel.Tracer("github.com/mycelian/portfolio-client/internal/analytics"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Track stamps ambient context onto a new event, appends it to the queue
// and returns without waiting for delivery. Delivery errors are never
// reported to the caller.
func (q *Queue) Track(eventType string, metadata map[string]any) {
	ev := newEvent(eventType, metadata, q.ambient.Snapshot(), q.now())

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		eventsDroppedTotal.Inc()
		q.log.Warn().Err(ErrQueueClosed).Str("event_type", eventType).Msg("dropping analytics event")
		return
	}
	q.events = append(q.events, ev)
	queueDepth.Set(float64(len(q.events)))
	eventsTrackedTotal.WithLabelValues(eventType).Inc()

	if q.state == Draining {
		q.mu.Unlock()
		return
	}
	q.state = Draining
	done := make(chan struct{})
	q.done = done
	q.mu.Unlock()

	go q.drain(done)
}

// State returns the current drain state.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Len returns the number of queued events, excluding one in flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Pending returns a copy of the queued events in delivery order.
func (q *Queue) Pending() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Event(nil), q.events...)
}

// Wait blocks until the drain running at call time ends (in Idle or
// Blocked) or ctx is done. It returns immediately when no drain is running.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	state, done := q.state, q.done
	q.mu.Unlock()
	if state != Draining {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for an in-flight drain to end.
// Events still queued afterwards are discarded with the Queue. Close is
// idempotent.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return q.Wait(ctx)
}

func (q *Queue) drain(done chan struct{}) {
	for {
		q.mu.Lock()
		if len(q.events) == 0 {
			q.state = Idle
			close(done)
			q.mu.Unlock()
			return
		}
		ev := q.events[0]
		q.events[0] = Event{}
		q.events = q.events[1:]
		queueDepth.Set(float64(len(q.events)))
		q.mu.Unlock()

		if err := q.deliver(ev); err != nil {
			q.mu.Lock()
			q.events = append([]Event{ev}, q.events...)
			q.state = Blocked
			queueDepth.Set(float64(len(q.events)))
			pending := len(q.events)
			close(done)
			q.mu.Unlock()

			deliveryFailuresTotal.Inc()
			q.log.Warn().Err(err).
				Str("event_type", ev.EventType).
				Int("pending", pending).
				Msg("analytics delivery failed; will retry on next event")
			return
		}
		eventsDeliveredTotal.Inc()
	}
}

// deliver runs one sink call. A panicking sink counts as a failed delivery.
func (q *Queue) deliver(ev Event) (err error) {
	ctx, span := q.tracer.Start(context.Background(), "analytics.deliver",
		trace.WithAttributes(attribute.String("analytics.event_type", ev.EventType)))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
		deliveryDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delivery failed")
		}
		span.End()
	}()
	return q.sink.Deliver(ctx, ev)
}
