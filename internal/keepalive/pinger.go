// Package keepalive periodically requests the service's own public URL so
// hosting platforms that idle inactive instances keep it running.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fr0stylo/guildwatch/internal/observability"
)

const (
	defaultInterval = 14 * time.Minute
	requestTimeout  = 30 * time.Second
)

// Pinger issues a GET to URL every Interval.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	log      *slog.Logger
	pings    metric.Int64Counter
}

// New creates a pinger. A zero interval means every 14 minutes.
func New(url string, interval time.Duration, log *slog.Logger) *Pinger {
	if interval <= 0 {
		interval = defaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	pings, _ := otel.Meter("github.com/fr0stylo/guildwatch/internal/keepalive").Int64Counter(
		"guildwatch.keepalive.pings",
		metric.WithDescription("Self pings by outcome"),
	)
	return &Pinger{
		url:      url,
		interval: interval,
		client: &http.Client{
			Timeout:   requestTimeout,
			Transport: observability.HTTPTransport(http.DefaultTransport),
		},
		log:   log,
		pings: pings,
	}
}

// Run pings until ctx is done. Ping failures are logged and never stop it.
func (p *Pinger) Run(ctx context.Context) error {
	p.log.InfoContext(ctx, "Keep-alive started", "url", p.url, "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoContext(ctx, "Keep-alive stopped")
			return nil
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil {
				p.log.WarnContext(ctx, "Keep-alive ping failed", "url", p.url, "error", err)
			}
		}
	}
}

// Ping performs one request and reports transport errors and non-2xx
// responses.
func (p *Pinger) Ping(ctx context.Context) error {
	outcome := "failed"
	defer func() {
		if p.pings != nil {
			p.pings.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("build keep-alive request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("keep-alive request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("keep-alive returned status %d", resp.StatusCode)
	}
	outcome = "ok"
	p.log.DebugContext(ctx, "Keep-alive ping", "status", resp.StatusCode)
	return nil
}
