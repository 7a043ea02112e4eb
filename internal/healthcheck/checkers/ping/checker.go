// Package pingchecker reports the reachability of a dependency that can be
// probed with a single context-aware call.
package pingchecker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/memohai/avatar/internal/healthcheck"
)

const defaultTimeout = 2 * time.Second

// PingFunc probes a dependency.
type PingFunc func(ctx context.Context) error

// Checker evaluates one ping-style health check.
type Checker struct {
	logger    *slog.Logger
	checkType string
	name      string
	ping      PingFunc
	timeout   time.Duration
}

// NewChecker creates a ping checker. checkType groups results (e.g.
// "store", "cache", "storage") and name identifies the backend.
func NewChecker(log *slog.Logger, checkType, name string, ping PingFunc) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger:    log.With(slog.String("checker", "healthcheck_"+checkType)),
		checkType: strings.TrimSpace(checkType),
		name:      strings.TrimSpace(name),
		ping:      ping,
		timeout:   defaultTimeout,
	}
}

// WithTimeout overrides the per-probe deadline.
func (c *Checker) WithTimeout(d time.Duration) *Checker {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// ListChecks probes the dependency once.
func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	if ctx == nil {
		ctx = context.Background()
	}
	item := healthcheck.CheckResult{
		ID:       c.checkType + "." + c.name,
		Type:     c.checkType,
		Metadata: map[string]any{"backend": c.name},
	}
	if c.ping == nil {
		item.Status = healthcheck.StatusUnknown
		item.Summary = "No probe is configured for " + c.name + "."
		return []healthcheck.CheckResult{item}
	}

	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	err := c.ping(probeCtx)
	item.Metadata["latency_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Warn("health probe failed", slog.String("backend", c.name), slog.Any("error", err))
		item.Status = healthcheck.StatusError
		item.Summary = c.name + " is unreachable."
		item.Detail = err.Error()
		return []healthcheck.CheckResult{item}
	}
	item.Status = healthcheck.StatusOK
	item.Summary = c.name + " is reachable."
	return []healthcheck.CheckResult{item}
}
