package handlers

import (
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/config"
)

// ServiceName is reported by /ping.
const ServiceName = "ekaya-db2"

// StatsReporter reports the state of the engine connection without opening it.
type StatsReporter interface {
	Stats() datasource.ConnectionStats
}

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string                      `json:"status"`
	Version     string                      `json:"version"`
	Service     string                      `json:"service"`
	GoVersion   string                      `json:"go_version"`
	Hostname    string                      `json:"hostname"`
	Environment string                      `json:"environment"`
	Connection  *datasource.ConnectionStats `json:"connection,omitempty"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	stats  StatsReporter
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. stats may be nil.
func NewHealthHandler(cfg *config.Config, stats StatsReporter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, stats: stats, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// Liveness only: it never touches the engine connection.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		h.logger.Error("Failed to get hostname", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to get hostname")
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     ServiceName,
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
	}
	if h.stats != nil {
		stats := h.stats.Stats()
		response.Connection = &stats
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
