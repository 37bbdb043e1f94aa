package client

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestWithHTTPClientAndDebugLogging(t *testing.T) {
	// timeout option sets http timeout
	c := &Client{http: &http.Client{}}
	if err := WithHTTPTimeout(5 * time.Second)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.http.Timeout != 5*time.Second {
		t.Fatalf("http timeout not set")
	}

	// debug logging wraps transport
	var called bool
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: make(http.Header)}, nil
	})
	c2 := &Client{}
	if err := WithHTTPClient(&http.Client{Transport: rt})(c2); err != nil {
		t.Fatalf("WithHTTPClient: %v", err)
	}
	if err := WithDebugLogging(true)(c2); err != nil {
		t.Fatalf("WithDebugLogging: %v", err)
	}
	if err := WithDebugLogging(true)(c2); err != nil {
		t.Fatalf("WithDebugLogging: %v", err)
	}
	dt, ok := c2.http.Transport.(*debugTransport)
	if !ok {
		t.Fatalf("expected debugTransport")
	}
	if _, nested := dt.base.(*debugTransport); nested {
		t.Fatalf("debug transport installed twice")
	}

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.com", strings.NewReader(""))
	if _, err := c2.http.Do(req); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if !called {
		t.Fatalf("base transport not invoked")
	}
}

func TestWithHTTPClient_CallerClientUntouched(t *testing.T) {
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: make(http.Header)}, nil
	})
	hc := &http.Client{Transport: rt, Timeout: time.Minute}

	c := &Client{}
	for _, opt := range []Option{WithHTTPClient(hc), WithHTTPTimeout(3 * time.Second), WithDebugLogging(true)} {
		if err := opt(c); err != nil {
			t.Fatalf("option: %v", err)
		}
	}
	if hc.Timeout != time.Minute {
		t.Fatalf("caller timeout changed to %v", hc.Timeout)
	}
	if _, wrapped := hc.Transport.(*debugTransport); wrapped {
		t.Fatalf("caller transport was wrapped")
	}
	if c.http == hc || c.http.Timeout != 3*time.Second {
		t.Fatalf("client did not get its own configured copy")
	}
	if _, ok := c.http.Transport.(*debugTransport); !ok {
		t.Fatalf("expected debugTransport on the copy")
	}
}

func TestNilOptionsRejected(t *testing.T) {
	c := &Client{http: &http.Client{}}
	for name, opt := range map[string]Option{
		"http client": WithHTTPClient(nil),
		"namespace":   WithNamespace(nil),
		"sink":        WithSink(nil),
		"clock":       WithClock(nil),
	} {
		if err := opt(c); err == nil {
			t.Fatalf("%s: expected error for nil", name)
		}
	}
}

func TestNew_AutoEnableDebugViaEnv(t *testing.T) {
	t.Setenv("PORTFOLIO_DEBUG", "true")
	c, _ := newTestClient(t, nil)
	if _, ok := c.http.Transport.(*debugTransport); !ok {
		t.Fatalf("expected debugTransport to be installed when PORTFOLIO_DEBUG=true")
	}
}

func TestDebugTransport_ErrorPath(t *testing.T) {
	// base transport returns error
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})
	hc := &http.Client{Transport: &debugTransport{base: rt}}
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.com", http.NoBody)
	if _, err := hc.Do(req); err == nil {
		t.Fatalf("expected error from underlying transport")
	}
}
