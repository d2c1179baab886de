package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/xjzhong-027/sleepDetect/internal/camera"
	"github.com/xjzhong-027/sleepDetect/internal/models"
	"github.com/xjzhong-027/sleepDetect/internal/poller"
	"go.uber.org/zap"
)

// MonitoringBackend 会话存储依赖的后端接口
type MonitoringBackend interface {
	StartMonitoring(ctx context.Context) (models.MessageResponse, error)
	StopMonitoring(ctx context.Context) error
	MonitoringData(ctx context.Context) (models.MonitoringDataResponse, error)
}

// MonitoringOptions 会话存储配置
type MonitoringOptions struct {
	Interval     time.Duration // 遥测轮询间隔，<=0 时使用 models.PollingInterval
	NewSessionID func() string
}

// TickStats 遥测轮询统计
type TickStats struct {
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// MonitoringStore 监测会话状态，会话生命周期的唯一入口
//
// StartMonitoring/StopMonitoring 由 lifecycle 串行化，权限探测与启动请求之间不会插入停止；
// 状态读写由 mu 保护，轮询器的启停与 IsMonitoring 在同一临界区内变更。
type MonitoringStore struct {
	backend  MonitoringBackend
	prober   camera.Prober
	poller   *poller.Poller
	interval time.Duration
	newID    func() string
	logger   *zap.Logger

	lifecycle sync.Mutex
	closed    bool

	mu    sync.RWMutex
	state models.MonitoringState

	observable *Observable[models.MonitoringState]

	ticksOK   atomic.Int64
	ticksFail atomic.Int64
}

// NewMonitoringStore 创建会话存储，初始为空闲状态
func NewMonitoringStore(backend MonitoringBackend, prober camera.Prober, opts MonitoringOptions, logger *zap.Logger) *MonitoringStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = models.PollingInterval
	}
	newID := opts.NewSessionID
	if newID == nil {
		newID = uuid.NewString
	}
	return &MonitoringStore{
		backend:    backend,
		prober:     prober,
		poller:     poller.New("monitoring-data", logger),
		interval:   interval,
		newID:      newID,
		logger:     logger,
		state:      models.NewMonitoringState(),
		observable: NewObservable[models.MonitoringState](),
	}
}

// StartMonitoring 探测摄像头权限并请求后端开始监测
//
// 权限被拒绝返回 ErrPermissionDenied 且不发送请求；后端不可用时返回包装了
// ErrBackendUnavailable 的错误；后端未确认（message 不是“监测已开始”）时状态不变并返回 nil。
// 已在监测中再次调用是安全的，不会产生第二个轮询任务。
func (s *MonitoringStore) StartMonitoring(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if !s.prober.Probe(ctx) {
		s.logger.Error("Failed to start monitoring", zap.Error(ErrPermissionDenied))
		return ErrPermissionDenied
	}

	resp, err := s.backend.StartMonitoring(ctx)
	if err != nil {
		if errors.Is(err, ErrUnexpectedResponse) {
			s.logger.Warn("Backend did not acknowledge monitoring start", zap.Error(err))
			return nil
		}
		err = backendError("start monitoring", err)
		s.logger.Error("Failed to start monitoring", zap.Error(err))
		return err
	}

	if resp.Message != models.MonitoringStartedMessage {
		s.logger.Warn("Backend did not acknowledge monitoring start",
			zap.String("message", resp.Message),
			zap.String("backend_error", resp.Error),
			zap.Error(ErrUnexpectedResponse),
		)
		return nil
	}

	s.mu.Lock()
	if !s.state.IsMonitoring {
		s.state.IsMonitoring = true
		s.state.SessionID = s.newID()
	}
	s.poller.Start(s.tick, s.interval)
	snapshot := s.state
	s.observable.Publish(snapshot)
	s.mu.Unlock()

	s.logger.Info("Monitoring started",
		zap.String("session_id", snapshot.SessionID),
		zap.Duration("interval", s.interval),
	)
	return nil
}

// StopMonitoring 请求后端停止监测，成功后停止轮询
// 请求失败时状态不变，调用方可重试
func (s *MonitoringStore) StopMonitoring(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if err := s.backend.StopMonitoring(ctx); err != nil {
		err = backendError("stop monitoring", err)
		s.logger.Error("Failed to stop monitoring", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.state.IsMonitoring = false
	s.poller.Stop()
	snapshot := s.state
	s.observable.Publish(snapshot)
	s.mu.Unlock()

	s.logger.Info("Monitoring stopped", zap.String("session_id", snapshot.SessionID))
	return nil
}

// tick 拉取一次遥测；错误交给轮询器记录，不影响会话
func (s *MonitoringStore) tick(ctx context.Context) error {
	data, err := s.backend.MonitoringData(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.ticksFail.Add(1)
		}
		return fmt.Errorf("failed to fetch monitoring data: %w", err)
	}
	s.ticksOK.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	// 会话已结束（或本轮已被取消）时丢弃迟到的响应
	if ctx.Err() != nil || !s.state.IsMonitoring {
		return nil
	}

	assigned := false
	if data.Posture != nil && data.Posture.Current != nil {
		s.state.CurrentPosture = *data.Posture.Current
		assigned = true
	}
	if data.Emotion != nil && data.Emotion.Current != nil {
		s.state.CurrentEmotion = *data.Emotion.Current
		assigned = true
	}
	if data.Wake != nil && data.Wake.Count != nil {
		s.state.NightWakeCount = *data.Wake.Count
		assigned = true
	}
	if !assigned {
		return nil
	}
	s.state.UpdatedAt = time.Now()
	s.observable.Publish(s.state)
	return nil
}

// State 当前状态快照
func (s *MonitoringStore) State() models.MonitoringState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe 订阅状态变更
func (s *MonitoringStore) Subscribe() (<-chan models.MonitoringState, func()) {
	return s.observable.Subscribe()
}

// PollerRunning 遥测轮询任务是否在运行
func (s *MonitoringStore) PollerRunning() bool {
	return s.poller.Running()
}

// Interval 遥测轮询间隔
func (s *MonitoringStore) Interval() time.Duration {
	return s.interval
}

// TickStats 遥测轮询成功/失败次数
func (s *MonitoringStore) TickStats() TickStats {
	return TickStats{
		Succeeded: s.ticksOK.Load(),
		Failed:    s.ticksFail.Load(),
	}
}

// Close 进程退出时停止轮询（不通知后端）并关闭订阅
func (s *MonitoringStore) Close() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	s.mu.Lock()
	s.poller.Stop()
	s.mu.Unlock()
	s.poller.Wait()
	s.observable.Close()
}

// backendError 保证返回的错误可以用 errors.Is(err, ErrBackendUnavailable) 判断
func backendError(op string, err error) error {
	if errors.Is(err, ErrBackendUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrBackendUnavailable, err)
}
