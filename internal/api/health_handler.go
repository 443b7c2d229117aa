package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/partner-console/internal/pkg/httputil"
	"github.com/ignite/partner-console/internal/session"
)

// HealthStatus represents the overall health of the console.
type HealthStatus struct {
	Status  string                    `json:"status"` // "healthy", "degraded", "unhealthy"
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "degraded"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

const notConfigured = "not configured"

// probe is one named dependency check. A nil ping means the dependency is
// not configured; it is reported but never fails readiness.
type probe struct {
	name    string
	timeout time.Duration
	slow    time.Duration
	ping    func(ctx context.Context) error
}

// HealthChecker reports on the console's backing services.
type HealthChecker struct {
	probes    []probe
	startTime time.Time
}

// NewHealthChecker checks the roster database and Redis. Either may be nil.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client) *HealthChecker {
	hc := &HealthChecker{startTime: time.Now()}

	var dbPing func(context.Context) error
	if db != nil {
		dbPing = db.PingContext
	}
	hc.probes = append(hc.probes, probe{name: "database", timeout: 3 * time.Second, slow: time.Second, ping: dbPing})

	var redisPing func(context.Context) error
	if redisClient != nil {
		redisPing = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	hc.probes = append(hc.probes, probe{name: "redis", timeout: 2 * time.Second, slow: 500 * time.Millisecond, ping: redisPing})
	return hc
}

// WithSessions adds a check that loads a throwaway session id, which covers
// whichever backend the store uses.
func (hc *HealthChecker) WithSessions(store session.Store) *HealthChecker {
	var ping func(context.Context) error
	if store != nil {
		ping = func(ctx context.Context) error {
			_, err := store.Load(ctx, "healthcheck")
			return err
		}
	}
	hc.probes = append(hc.probes, probe{name: "sessions", timeout: 2 * time.Second, slow: 500 * time.Millisecond, ping: ping})
	return hc
}

const healthVersion = "1.0.0"

// HandleHealth returns the health status of all components. Always 200; the
// status field conveys health.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	httputil.OK(w, HealthStatus{
		Status:  determineOverallStatus(checks),
		Version: healthVersion,
		Uptime:  formatUptime(time.Since(hc.startTime)),
		Checks:  checks,
	})
}

// HandleLiveness always returns 200 while the process is running.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "alive",
		"uptime": formatUptime(time.Since(hc.startTime)),
	})
}

// HandleReadiness returns 503 when a configured dependency is down.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	overall := determineOverallStatus(checks)

	ready := overall != "unhealthy"
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	httputil.JSON(w, status, map[string]any{
		"ready":  ready,
		"status": overall,
		"checks": checks,
	})
}

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]ComponentCheck, len(hc.probes))
	)
	for _, p := range hc.probes {
		wg.Add(1)
		go func(p probe) {
			defer wg.Done()
			c := p.run(ctx)
			mu.Lock()
			checks[p.name] = c
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return checks
}

func (p probe) run(ctx context.Context) ComponentCheck {
	if p.ping == nil {
		return ComponentCheck{Status: "down", Message: notConfigured}
	}
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := p.ping(pingCtx)
	latency := time.Since(start)

	switch {
	case err != nil:
		return ComponentCheck{
			Status:  "down",
			Latency: latency.String(),
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	case latency > p.slow:
		return ComponentCheck{
			Status:  "degraded",
			Latency: latency.String(),
			Message: fmt.Sprintf("slow response (%s)", latency),
		}
	}
	return ComponentCheck{Status: "up", Latency: latency.String(), Message: "connected"}
}

// determineOverallStatus derives the aggregate status from individual checks.
//
// Rules:
//   - "unhealthy" if a configured dependency is down
//   - "degraded"  if any check is degraded
//   - "healthy"   otherwise
func determineOverallStatus(checks map[string]ComponentCheck) string {
	degraded := false
	for _, c := range checks {
		switch {
		case c.Status == "down" && c.Message != notConfigured:
			return "unhealthy"
		case c.Status == "degraded":
			degraded = true
		}
	}
	if degraded {
		return "degraded"
	}
	return "healthy"
}

// formatUptime produces a human-readable uptime string like "3d 4h 12m 5s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
