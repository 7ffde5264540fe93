package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// requestIDTransport stamps every outgoing request with a UUID v7 unless
// the caller already set one.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get(RequestIDHeader) == "" {
		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, uuid.Must(uuid.NewV7()).String())
	}
	return t.next.RoundTrip(r)
}

// loggingTransport logs every round trip at debug level. Failed round
// trips (no response) log at warn.
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	duration := time.Since(start)

	if err != nil {
		t.logger.Log(r.Context(), slog.LevelWarn, "api request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", float64(duration.Microseconds())/1000.0,
			"request_id", r.Header.Get(RequestIDHeader),
			"error", err,
		)
		return nil, err
	}
	t.logger.Log(r.Context(), slog.LevelDebug, "api request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", float64(duration.Microseconds())/1000.0,
		"request_id", r.Header.Get(RequestIDHeader),
	)
	return resp, nil
}

// pacingTransport waits on a token bucket before each request.
type pacingTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *pacingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(r.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(r)
}

// newTransport wraps base with request ids, logging, and optional pacing.
// Requests per second <= 0 disables pacing.
func newTransport(base http.RoundTripper, logger *slog.Logger, rps float64) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	var rt http.RoundTripper = &loggingTransport{next: base, logger: logger}
	rt = &requestIDTransport{next: rt}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		rt = &pacingTransport{next: rt, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
	}
	return rt
}
