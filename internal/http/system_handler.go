package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/xjzhong-027/sleepDetect/internal/models"
	"go.uber.org/zap"
)

// ClockSource 由 store.ClockStore 实现
type ClockSource interface {
	State() models.ClockState
}

// BackendHealth 由 client.Client 实现
type BackendHealth interface {
	Health(ctx context.Context) (models.HealthResponse, error)
}

// MonitoringStateSource 当前会话状态
type MonitoringStateSource interface {
	State() models.MonitoringState
}

// HealthStatus 代理与检测后端的健康状态
type HealthStatus struct {
	Status       string                 `json:"status"`
	Monitoring   bool                   `json:"monitoring"`
	Backend      *models.HealthResponse `json:"backend,omitempty"`
	BackendError string                 `json:"backendError,omitempty"`
	CheckedAt    time.Time              `json:"checkedAt"`
}

type SystemHandler struct {
	clock      ClockSource
	backend    BackendHealth
	monitoring MonitoringStateSource
	timeout    time.Duration
	logger     *zap.Logger
}

func NewSystemHandler(clock ClockSource, backend BackendHealth, monitoring MonitoringStateSource, logger *zap.Logger) *SystemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemHandler{
		clock:      clock,
		backend:    backend,
		monitoring: monitoring,
		timeout:    3 * time.Second,
		logger:     logger,
	}
}

func (h *SystemHandler) GetClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.clock.State()))
}

// Health 代理本身可用即返回 200，后端不可达时 status 为 degraded
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:     "ok",
		Monitoring: h.monitoring.State().IsMonitoring,
		CheckedAt:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	backend, err := h.backend.Health(ctx)
	if err != nil {
		h.logger.Warn("Backend health check failed", zap.Error(err))
		status.Status = "degraded"
		status.BackendError = err.Error()
	} else {
		status.Backend = &backend
	}
	writeJSON(w, http.StatusOK, Ok(status))
}
