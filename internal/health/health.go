package health

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/Skotchmaster/account_service/internal/logging"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	DepConnected    = "connected"
	DepError        = "error"
	DepDisconnected = "disconnected"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependency struct {
	Status       string  `json:"status"`
	ResponseTime *string `json:"responseTime"`
}

type Memory struct {
	Used  string `json:"used"`
	Total string `json:"total"`
}

type Server struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Memory  Memory `json:"memory"`
}

type Services struct {
	Redis    Dependency `json:"redis"`
	Database Dependency `json:"database"`
	Server   Server     `json:"server"`
}

type Report struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Uptime       float64   `json:"uptime"`
	ResponseTime string    `json:"responseTime"`
	Environment  string    `json:"environment"`
	Services     Services  `json:"services"`
}

func (r Report) Healthy() bool { return r.Status == StatusHealthy }

type Checker struct {
	Database    Pinger
	Cache       Pinger
	Environment string
	Started     time.Time
	Timeout     time.Duration
}

func NewChecker(database, cache Pinger, environment string) *Checker {
	return &Checker{
		Database:    database,
		Cache:       cache,
		Environment: environment,
		Started:     time.Now(),
		Timeout:     2 * time.Second,
	}
}

// Check pings the cache and then the store and assembles the report. The
// service is healthy only when both answer.
func (h *Checker) Check(ctx context.Context) Report {
	l := logging.FromContext(ctx).With("svc", "health")
	start := time.Now()

	redis := h.probe(ctx, h.Cache)
	if redis.Status == DepError {
		l.Error("health_check_failed", "dependency", "redis")
	}
	database := h.probe(ctx, h.Database)
	if database.Status == DepError {
		l.Error("health_check_failed", "dependency", "database")
	}

	status := StatusUnhealthy
	if redis.Status == DepConnected && database.Status == DepConnected {
		status = StatusHealthy
	}

	return Report{
		Status:       status,
		Timestamp:    time.Now().UTC(),
		Uptime:       time.Since(h.Started).Seconds(),
		ResponseTime: millis(time.Since(start)),
		Environment:  h.Environment,
		Services: Services{
			Redis:    redis,
			Database: database,
			Server: Server{
				Status:  "running",
				Version: runtime.Version(),
				Memory:  memory(),
			},
		},
	}
}

func (h *Checker) probe(ctx context.Context, p Pinger) Dependency {
	if p == nil {
		return Dependency{Status: DepDisconnected}
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := p.Ping(pctx); err != nil {
		logging.FromContext(ctx).Debug("ping failed", "error", err)
		return Dependency{Status: DepError}
	}

	dep := Dependency{Status: DepConnected}
	if ms := time.Since(start).Milliseconds(); ms > 0 {
		s := fmt.Sprintf("%dms", ms)
		dep.ResponseTime = &s
	}
	return dep
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func memory() Memory {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Memory{
		Used:  fmt.Sprintf("%dMB", (m.HeapAlloc+512*1024)/(1024*1024)),
		Total: fmt.Sprintf("%dMB", (m.HeapSys+512*1024)/(1024*1024)),
	}
}
