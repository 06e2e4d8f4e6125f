// Package quota gates outbound requests per intelligence service behind a
// rolling request budget and rotates API credentials round-robin. All state is
// owned by a Keeper constructed per run; nothing is package-global, so parallel
// runs and parallel tests never share counters.
package quota

import (
	"context"
	"sync"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
)

// DefaultWindow is the budget window when none is configured.
const DefaultWindow = 60 * time.Second

// serviceQuota holds per-service request accounting and the key cursor.
// Mutated only under Keeper.mu.
type serviceQuota struct {
	limit          int         // requests allowed per window
	sent           []time.Time // dispatch timestamps inside the current window
	keys           []string
	cursor         int
	suspendedUntil time.Time
}

// Keeper tracks request budgets and credential rotation for every registered
// service. Safe for concurrent use; the critical section is O(limit) bookkeeping
// and never performs I/O.
type Keeper struct {
	mu       sync.Mutex
	window   time.Duration
	services map[string]*serviceQuota
	logger   logx.Logger
}

// NewKeeper creates a Keeper with the given budget window (0 = 60s).
func NewKeeper(window time.Duration, logger logx.Logger) *Keeper {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = logx.New()
	}

	return &Keeper{
		window:   window,
		services: make(map[string]*serviceQuota),
		logger:   logger.With("component", "quota"),
	}
}

// Register declara un servicio con su presupuesto por ventana y sus credenciales.
// Un servicio con credenciales vacías o presupuesto no positivo es un error de
// configuración fatal, no un fallo en runtime.
func (k *Keeper) Register(service string, limitPerWindow int, keys []string) error {
	if service == "" {
		return errors.Wrap(errors.ErrInvalidInput, "empty service name")
	}
	if limitPerWindow <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "service %s: request budget must be positive", service)
	}
	if len(keys) == 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "service %s: no API credentials configured", service)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.services[service] = &serviceQuota{
		limit: limitPerWindow,
		keys:  append([]string(nil), keys...),
	}

	k.logger.Debug("service registered",
		"service", service,
		"budget", limitPerWindow,
		"keys", len(keys),
	)
	return nil
}

// Acquire blocks cooperatively until the service is under budget and not
// suspended, then consumes one request slot and returns the next credential in
// round-robin order. Returns the context error on cancellation.
func (k *Keeper) Acquire(ctx context.Context, service string) (string, error) {
	for {
		key, wait, err := k.tryAcquire(service)
		if err != nil {
			return "", err
		}
		if wait == 0 {
			return key, nil
		}

		k.logger.Debug("budget exhausted, waiting",
			"service", service,
			"wait_ms", wait.Milliseconds(),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
			// Re-check on next iteration
		}
	}
}

// tryAcquire attempts to consume a slot. Returns the credential on success, or
// the duration to wait before the next attempt.
func (k *Keeper) tryAcquire(service string) (string, time.Duration, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	sq, ok := k.services[service]
	if !ok {
		return "", 0, errors.Wrapf(errors.ErrInvalidInput, "service %s not registered", service)
	}

	now := time.Now()

	if sq.suspendedUntil.After(now) {
		return "", sq.suspendedUntil.Sub(now), nil
	}

	sq.prune(now, k.window)

	if len(sq.sent) >= sq.limit {
		// Oldest request leaving the sliding window frees the next slot.
		wait := sq.sent[0].Add(k.window).Sub(now)
		if wait <= 0 {
			wait = time.Millisecond
		}
		return "", wait, nil
	}

	sq.sent = append(sq.sent, now)
	key := sq.keys[sq.cursor]
	sq.cursor = (sq.cursor + 1) % len(sq.keys)
	return key, 0, nil
}

// Suspend pauses a service after a 429, honoring the server's retry hint
// (0 = default 60s). The rejected request is refunded: a throttled call never
// counts as a consumed slot.
func (k *Keeper) Suspend(service string, retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultWindow
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	sq, ok := k.services[service]
	if !ok {
		return
	}

	sq.suspendedUntil = time.Now().Add(retryAfter)
	if n := len(sq.sent); n > 0 {
		sq.sent = sq.sent[:n-1]
	}

	k.logger.Warn("service suspended",
		"service", service,
		"retry_after_ms", retryAfter.Milliseconds(),
	)
}

// Registered reporta si un servicio fue registrado.
func (k *Keeper) Registered(service string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.services[service]
	return ok
}

// InFlight returns how many request slots the service has consumed inside the
// current window. Monitoring/testing helper.
func (k *Keeper) InFlight(service string) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	sq, ok := k.services[service]
	if !ok {
		return 0
	}
	sq.prune(time.Now(), k.window)
	return len(sq.sent)
}

// prune drops timestamps that have left the sliding window.
func (sq *serviceQuota) prune(now time.Time, window time.Duration) {
	cut := 0
	for cut < len(sq.sent) && now.Sub(sq.sent[cut]) >= window {
		cut++
	}
	if cut > 0 {
		sq.sent = sq.sent[cut:]
	}
}
