package consumer

import (
	"context"
	"time"

	"github.com/xjzhong-027/sleepDetect/internal/history"
	"github.com/xjzhong-027/sleepDetect/internal/models"
	"github.com/xjzhong-027/sleepDetect/internal/publisher"
	"go.uber.org/zap"
)

// StateSource 监测状态来源（store.MonitoringStore）
type StateSource interface {
	State() models.MonitoringState
	Subscribe() (<-chan models.MonitoringState, func())
}

// ForwarderOptions 转发配置
type ForwarderOptions struct {
	PublishTimeout time.Duration // 单个 sink 的发布超时
	ReportInterval time.Duration // 指标日志间隔，0 表示不输出
}

// TelemetryForwarder 订阅监测状态，写入历史并转发到各 sink
// sink 失败只记录日志与指标，不会影响会话
type TelemetryForwarder struct {
	source   StateSource
	recorder *history.Recorder
	sinks    []publisher.Sink
	opts     ForwarderOptions
	logger   *zap.Logger
	metrics  *Metrics
}

// NewTelemetryForwarder 创建转发器，recorder 可为 nil
func NewTelemetryForwarder(
	source StateSource,
	recorder *history.Recorder,
	sinks []publisher.Sink,
	opts ForwarderOptions,
	logger *zap.Logger,
) *TelemetryForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 2 * time.Second
	}
	return &TelemetryForwarder{
		source:   source,
		recorder: recorder,
		sinks:    sinks,
		opts:     opts,
		logger:   logger,
		metrics:  newMetrics(),
	}
}

// Metrics 指标快照
func (f *TelemetryForwarder) Metrics() Metrics {
	return f.metrics.GetSnapshot()
}

// Run 阻塞直到 ctx 取消或状态源关闭
func (f *TelemetryForwarder) Run(ctx context.Context) error {
	updates, cancel := f.source.Subscribe()
	defer cancel()
	prev := f.source.State()

	f.logger.Info("Telemetry forwarder started", zap.Int("sinks", len(f.sinks)))

	if f.opts.ReportInterval > 0 {
		reportCtx, reportCancel := context.WithCancel(ctx)
		defer reportCancel()
		go f.reportMetrics(reportCtx)
	}

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Telemetry forwarder stopped")
			return nil
		case next, ok := <-updates:
			if !ok {
				f.logger.Info("Telemetry forwarder source closed")
				return nil
			}
			f.handle(ctx, prev, next)
			prev = next
		}
	}
}

func (f *TelemetryForwarder) handle(ctx context.Context, prev, next models.MonitoringState) {
	event := publisher.NewEvent(prev, next)

	recorded := false
	if f.recorder != nil {
		if event.Kind == publisher.EventSessionStarted && prev.SessionID != next.SessionID {
			f.recorder.Reset()
		}
		if event.Kind == publisher.EventTelemetry {
			recorded = f.recorder.Record(next.Sample())
		}
	}
	f.metrics.incReceived(recorded)

	if len(f.sinks) == 0 {
		return
	}

	var failed []string
	for _, sink := range f.sinks {
		pubCtx, cancel := context.WithTimeout(ctx, f.opts.PublishTimeout)
		err := sink.Publish(pubCtx, event)
		cancel()
		if err != nil {
			failed = append(failed, sink.Name())
			f.logger.Error("Failed to forward monitoring event",
				zap.String("sink", sink.Name()),
				zap.String("kind", string(event.Kind)),
				zap.String("session_id", next.SessionID),
				zap.Error(err),
			)
		}
	}
	f.metrics.incForwarded(failed)
}

// reportMetrics 定期输出指标
func (f *TelemetryForwarder) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(f.opts.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := f.metrics.GetSnapshot()
			f.logger.Info("Forwarder metrics report",
				zap.Int64("snapshots_received", s.SnapshotsReceived),
				zap.Int64("events_forwarded", s.EventsForwarded),
				zap.Int64("events_failed", s.EventsFailed),
				zap.Int64("history_recorded", s.HistoryRecorded),
				zap.Any("sink_errors", s.SinkErrors),
				zap.Duration("uptime", time.Since(s.StartTime)),
			)
		}
	}
}
