package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"demandcast/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	checks    []ComponentCheck
	startTime time.Time
	logger    *slog.Logger
}

// ComponentCheck is a named readiness probe for one dependency
type ComponentCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Ready reports whether every component passed its readiness probe
func (s HealthStatus) Ready() bool {
	return s.Status == "ready"
}

// NewHealthService creates a health service. Components are probed in order
// on every readiness check.
func NewHealthService(logger *slog.Logger, checks ...ComponentCheck) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.Int("components", len(checks)))

	return &HealthService{
		version:   contracts.Version,
		checks:    checks,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck probes every registered component
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth, len(hs.checks)),
	}

	for _, c := range hs.checks {
		if err := c.Check(ctx); err != nil {
			hs.logger.WarnContext(ctx, "component not ready",
				slog.String("component", c.Name),
				slog.String("error", err.Error()))
			status.Services[c.Name] = ServiceHealth{Status: "not_ready", Message: err.Error()}
			status.Status = "not_ready"
			continue
		}
		status.Services[c.Name] = ServiceHealth{Status: "ready"}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
