package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nerrad567/apiconsole/internal/metrics"
)

// healthCheckTimeout bounds the database ping made by /health.
const healthCheckTimeout = 2 * time.Second

// Component status values.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"
	statusDisabled = "disabled"
)

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Timestamp     string            `json:"timestamp"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Components    map[string]string `json:"components"`
	WebSocket     WSMetrics         `json:"websocket"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// handleHealth reports the server and dependency status. It answers 503
// only when the database is unreachable; MQTT and InfluxDB outages degrade
// the status without failing the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        statusOK,
		Version:       s.version,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Components:    make(map[string]string, 3),
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
	}

	status := http.StatusOK
	resp.Components["database"] = s.checkDatabase(r.Context())
	if resp.Components["database"] == statusDown {
		resp.Status = statusDown
		status = http.StatusServiceUnavailable
	}

	for name, dep := range map[string]ConnectionReporter{"mqtt": s.mqtt, "influxdb": s.influx} {
		state := connectionState(dep)
		resp.Components[name] = state
		if state != statusDisabled {
			metrics.SetDependency(name, state == statusOK)
		}
		if state == statusDown && resp.Status == statusOK {
			resp.Status = statusDegraded
		}
	}

	writeJSON(w, status, resp)
}

func (s *Server) checkDatabase(ctx context.Context) string {
	if s.db == nil {
		return statusDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := s.db.HealthCheck(ctx); err != nil {
		s.logger.Warn("database health check failed", "error", err)
		metrics.SetDependency("database", false)
		return statusDown
	}
	metrics.SetDependency("database", true)
	return statusOK
}

func connectionState(dep ConnectionReporter) string {
	switch {
	case dep == nil:
		return statusDisabled
	case dep.IsConnected():
		return statusOK
	default:
		return statusDown
	}
}
