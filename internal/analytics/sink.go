package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mycelian/portfolio-client/internal/types"
)

// EventPoster is the part of the API client the HTTP sink needs.
type EventPoster interface {
	TrackEvent(ctx context.Context, req types.AnalyticsEventRequest) (*types.TrackEventResponse, error)
}

// HTTPSink posts each event to the REST telemetry endpoint.
type HTTPSink struct {
	api EventPoster
}

// NewHTTPSink wraps api.
func NewHTTPSink(api EventPoster) *HTTPSink { return &HTTPSink{api: api} }

// Deliver implements Sink.
func (s *HTTPSink) Deliver(ctx context.Context, ev Event) error {
	_, err := s.api.TrackEvent(ctx, types.AnalyticsEventRequest{
		EventType: ev.EventType,
		Metadata:  ev.Metadata,
	})
	return err
}

const defaultFlushTimeout = 5 * time.Second

// NATSSink publishes each event as JSON on a subject and waits for the
// server to acknowledge the flush, so a delivery only succeeds once the
// broker has the message.
type NATSSink struct {
	nc           *nats.Conn
	subject      string
	flushTimeout time.Duration
}

// NewNATSSink connects to url. opts are passed to nats.Connect.
func NewNATSSink(url, subject string, opts ...nats.Option) (*NATSSink, error) {
	if subject == "" {
		return nil, fmt.Errorf("nats sink: subject must not be empty")
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSink{nc: nc, subject: subject, flushTimeout: defaultFlushTimeout}, nil
}

// Deliver implements Sink.
func (s *NATSSink) Deliver(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.nc.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", s.subject, err)
	}
	// FlushWithContext requires a deadline.
	if _, ok := ctx.Deadline(); ok {
		return s.nc.FlushWithContext(ctx)
	}
	return s.nc.FlushTimeout(s.flushTimeout)
}

// Close closes the NATS connection.
func (s *NATSSink) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
