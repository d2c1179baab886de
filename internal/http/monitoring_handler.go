package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xjzhong-027/sleepDetect/internal/history"
	"github.com/xjzhong-027/sleepDetect/internal/models"
	"go.uber.org/zap"
)

// MonitoringController 由 store.MonitoringStore 实现
type MonitoringController interface {
	StartMonitoring(ctx context.Context) error
	StopMonitoring(ctx context.Context) error
	State() models.MonitoringState
	Subscribe() (<-chan models.MonitoringState, func())
}

// HistorySource 由 history.Recorder 实现
type HistorySource interface {
	Snapshot() history.Snapshot
}

type MonitoringHandler struct {
	monitoring MonitoringController
	history    HistorySource
	logger     *zap.Logger
}

// NewMonitoringHandler history 可为 nil
func NewMonitoringHandler(monitoring MonitoringController, hist HistorySource, logger *zap.Logger) *MonitoringHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitoringHandler{monitoring: monitoring, history: hist, logger: logger}
}

func (h *MonitoringHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.monitoring.State()))
}

// Start 后端未确认时仍返回 200，isMonitoring 保持 false
func (h *MonitoringHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.monitoring.StartMonitoring(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.monitoring.State()))
}

func (h *MonitoringHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.monitoring.StopMonitoring(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.monitoring.State()))
}

func (h *MonitoringHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	snap := history.Snapshot{Samples: []models.TelemetrySample{}, Emotions: []history.EmotionChange{}}
	if h.history != nil {
		snap = h.history.Snapshot()
	}
	writeJSON(w, http.StatusOK, Ok(snap))
}

// Events 以 SSE 推送状态快照，连接建立时先推送当前状态
func (h *MonitoringHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, Fail("streaming unsupported"))
		return
	}

	updates, cancel := h.monitoring.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, h.monitoring.State()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEvent(w, st); err != nil {
				h.logger.Debug("SSE client gone", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, st models.MonitoringState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}
