// Package probe implements the liveness verification core. Every
// (hostname, port) pair is scheduled concurrently; a single shared token
// bucket caps the global dispatch rate, so the concurrency degree is bounded
// only by pacing, never by a worker count. One slow response cannot stall the
// limiter from releasing new requests for other targets.
package probe

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
	"github.com/tedbot101/Stalker-Recon/internal/platform/rate"
)

const (
	// DefaultTimeout bounds a single probe so one unreachable host cannot
	// stall the schedule past the sum of all timeouts.
	DefaultTimeout = 5 * time.Second

	// DefaultRate is the global dispatch rate in requests per second.
	DefaultRate = 3.0
)

// Config configures the prober.
type Config struct {
	// RateLimit is the global outbound request rate (req/s). Must be positive.
	RateLimit float64

	// Timeout bounds a single probe. Default: 5s.
	Timeout time.Duration

	// UserAgent is sent with every probe request.
	UserAgent string

	// ProxyURL routes probes through an HTTP(S) proxy when non-empty.
	ProxyURL string
}

// Prober drives each target through the state machine
// Pending -> Requesting -> {Live | NonLive | Unreachable}.
type Prober struct {
	client  *http.Client
	limiter *rate.Limiter
	ua      string
	logger  logx.Logger
}

// New creates a Prober. A non-positive rate limit is a fatal configuration
// error: the limiter is the only bound on concurrency.
func New(cfg Config, logger logx.Logger) (*Prober, error) {
	if cfg.RateLimit <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "rate limit must be positive, got %v", cfg.RateLimit)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logx.New()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid proxy URL %q", cfg.ProxyURL)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Prober{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		limiter: rate.New(cfg.RateLimit, 1),
		ua:      cfg.UserAgent,
		logger:  logger.With("component", "prober"),
	}, nil
}

// Probe schedules every target concurrently under the shared rate limiter and
// collects all terminal outcomes. Per-target failures are recorded outcomes,
// never run failures. On cancellation in-flight probes abort before commit;
// the batch only ever contains complete entries.
func (p *Prober) Probe(ctx context.Context, targets []domain.ProbeTarget) *domain.ProbeResultBatch {
	batch := &domain.ProbeResultBatch{}
	if len(targets) == 0 {
		return batch
	}

	p.logger.Info("starting liveness probes",
		"targets", len(targets),
		"rate", p.limiter.Rate(),
	)

	results := make(chan domain.ProbeResult, len(targets))
	var wg sync.WaitGroup

	for _, t := range targets {
		wg.Add(1)
		go func(t domain.ProbeTarget) {
			defer wg.Done()

			// Pending: gated on the shared limiter before dispatch.
			if err := p.limiter.Wait(ctx); err != nil {
				return // canceled while pending, nothing committed
			}

			result, ok := p.probeOne(ctx, t)
			if !ok {
				return // canceled mid-request, nothing committed
			}
			results <- result
		}(t)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		batch.Append(r)
	}

	p.logger.Info("liveness probes completed",
		"targets", len(targets),
		"recorded", batch.Len(),
	)

	return batch
}

// probeOne runs the Requesting state for a single target and classifies the
// terminal outcome. The second return is false when the run was canceled and
// no outcome may be recorded.
func (p *Prober) probeOne(ctx context.Context, t domain.ProbeTarget) (domain.ProbeResult, bool) {
	probeURL := t.URL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return domain.ProbeResult{
			Target:  t,
			Outcome: domain.StateUnreachable,
			Detail:  err.Error(),
		}, true
	}
	if p.ua != "" {
		req.Header.Set("User-Agent", p.ua)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ProbeResult{}, false
		}
		// Timeout, DNS failure, refused connection: terminal, recorded.
		p.logger.Debug("probe unreachable", "url", probeURL, "error", err.Error())
		return domain.ProbeResult{
			Target:  t,
			Outcome: domain.StateUnreachable,
			Detail:  err.Error(),
		}, true
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		p.logger.Info("probe live", "url", probeURL, "status", resp.StatusCode)
		return domain.ProbeResult{
			Target:     t,
			Outcome:    domain.StateLive,
			StatusCode: resp.StatusCode,
		}, true
	}

	p.logger.Debug("probe non-live", "url", probeURL, "status", resp.StatusCode)
	return domain.ProbeResult{
		Target:     t,
		Outcome:    domain.StateNonLive,
		StatusCode: resp.StatusCode,
	}, true
}
