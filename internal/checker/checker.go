package checker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/orf53975/sslyze/internal/xmltree"
)

// Run statuses recorded in CheckResult.Status.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// CheckResult represents the result of a single target check
type CheckResult struct {
	Target         string         `json:"target" yaml:"target"`
	Host           string         `json:"host,omitempty" yaml:"host,omitempty"`
	Port           int            `json:"port,omitempty" yaml:"port,omitempty"`
	IP             string         `json:"ip,omitempty" yaml:"ip,omitempty"`
	Plugin         string         `json:"plugin" yaml:"plugin"`
	Title          string         `json:"title,omitempty" yaml:"title,omitempty"`
	CheckedAt      time.Time      `json:"checked_at" yaml:"checked_at"`
	Status         string         `json:"status" yaml:"status"`
	HighestVersion string         `json:"highest_version,omitempty" yaml:"highest_version,omitempty"`
	Findings       map[string]any `json:"findings,omitempty" yaml:"findings,omitempty"`
	Text           []string       `json:"text,omitempty" yaml:"text,omitempty"`
	ResponseTime   float64        `json:"response_time_ms,omitempty" yaml:"response_time_ms,omitempty"`
	Error          string         `json:"error,omitempty" yaml:"error,omitempty"`

	// XML is the plugin's structured node; it only feeds the XML report.
	XML *xmltree.Element `json:"-" yaml:"-"`
}

// Checker is the interface that all check implementations must satisfy
type Checker interface {
	// Check performs the actual check logic for a single target
	Check(ctx context.Context, target string) CheckResult

	// Name returns the name of this checker (e.g., "check fallback")
	Name() string
}

// AuditFunc is called once per finished target.
type AuditFunc func(target string, result CheckResult, duration float64) error

// Runner orchestrates the execution of checks with concurrency and rate limiting.
// Each target gets its own Check call; nothing is shared between them.
type Runner struct {
	Concurrency int           // Maximum number of concurrent checks
	RateLimit   int           // Checks started per second (global), <= 0 for unlimited
	Timeout     time.Duration // Timeout for each check
	Logger      *zap.Logger
}

// RunChecks executes checks against multiple targets using a worker pool.
// Results come back in target order.
func (r *Runner) RunChecks(ctx context.Context, targets []string, checker Checker, auditFn AuditFunc) []CheckResult {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	burst := 1
	if r.RateLimit > 0 {
		limit = rate.Limit(r.RateLimit)
		burst = r.RateLimit
	}
	limiter := rate.NewLimiter(limit, burst)

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	// Worker pool
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]CheckResult, len(targets))

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, t string) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := limiter.Wait(ctx); err != nil {
				results[idx] = CheckResult{
					Target:    t,
					CheckedAt: time.Now().UTC(),
					Status:    StatusError,
					Error:     err.Error(),
				}
				return
			}

			start := time.Now()

			checkCtx := ctx
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				checkCtx, cancel = context.WithTimeout(ctx, r.Timeout)
				defer cancel()
			}

			result := checker.Check(checkCtx, t)

			duration := time.Since(start).Seconds()
			logger.Debug("check finished",
				zap.String("checker", checker.Name()),
				zap.String("target", t),
				zap.String("status", result.Status),
				zap.Float64("duration_s", duration),
			)

			if auditFn != nil {
				if err := auditFn(t, result, duration); err != nil {
					logger.Warn("audit callback failed", zap.String("target", t), zap.Error(err))
				}
			}

			results[idx] = result
		}(i, target)
	}

	wg.Wait()
	return results
}
