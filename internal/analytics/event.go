package analytics

import (
	"sync"
	"time"
)

// Ambient metadata keys stamped onto every event.
const (
	KeyTimestamp = "timestamp"
	KeyURL       = "url"
	KeyReferrer  = "referrer"
	KeyUserAgent = "user_agent"
)

// timestampLayout matches an ISO-8601 instant with millisecond precision
// (2025-01-02T03:04:05.678Z).
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Event is one telemetry record. Queue position is its enqueue time; there
// is no identity key.
type Event struct {
	EventType string         `json:"event_type"`
	Metadata  map[string]any `json:"metadata"`
}

// AmbientContext is the environment captured when an event is tracked.
type AmbientContext struct {
	URL       string
	Referrer  string
	UserAgent string
}

// Ambient supplies the environment at enqueue time.
type Ambient interface {
	Snapshot() AmbientContext
}

// Location is the default Ambient: it follows navigation the way a
// browser's location and referrer do.
type Location struct {
	mu        sync.RWMutex
	url       string
	referrer  string
	userAgent string
}

// NewLocation starts at url with an empty referrer.
func NewLocation(url, userAgent string) *Location {
	return &Location{url: url, userAgent: userAgent}
}

// Navigate moves to url; the previous url becomes the referrer.
func (l *Location) Navigate(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if url == l.url {
		return
	}
	l.referrer = l.url
	l.url = url
}

// Snapshot implements Ambient.
func (l *Location) Snapshot() AmbientContext {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return AmbientContext{URL: l.url, Referrer: l.referrer, UserAgent: l.userAgent}
}

// StaticAmbient is a fixed Ambient, handy for tests and batch tools.
type StaticAmbient AmbientContext

func (s StaticAmbient) Snapshot() AmbientContext { return AmbientContext(s) }

// newEvent stamps ambient context and merges metadata over it; caller
// keys win on conflict.
func newEvent(eventType string, metadata map[string]any, amb AmbientContext, now time.Time) Event {
	md := make(map[string]any, len(metadata)+4)
	md[KeyTimestamp] = now.UTC().Format(timestampLayout)
	md[KeyURL] = amb.URL
	md[KeyReferrer] = amb.Referrer
	md[KeyUserAgent] = amb.UserAgent
	for k, v := range metadata {
		md[k] = v
	}
	return Event{EventType: eventType, Metadata: md}
}
