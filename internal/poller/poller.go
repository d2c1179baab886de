// Package poller 定时轮询任务
//
// 每个 Poller 最多持有一个调度；Start/Stop 幂等。
// tick 在独立 goroutine 中执行，下一次调度不等待上一次完成，
// tick 返回的错误或 panic 只记录日志，不会停止调度。
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPeriod 默认轮询间隔
const DefaultPeriod = 1000 * time.Millisecond

// TickFunc 一次轮询；Stop 时 ctx 被取消
type TickFunc func(ctx context.Context) error

// Poller 可重复启停的定时任务
type Poller struct {
	name   string
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	period time.Duration

	inflight sync.WaitGroup
}

// New 创建 Poller
func New(name string, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		name:   name,
		logger: logger,
	}
}

// Start 按 period 调度 tick，第一次在一个周期之后执行
// 已在运行时不做任何事并返回 false
func (p *Poller) Start(tick TickFunc, period time.Duration) bool {
	if period <= 0 {
		period = DefaultPeriod
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.period = period

	p.inflight.Add(1)
	go p.loop(ctx, tick, period)

	p.logger.Debug("Poller started",
		zap.String("poller", p.name),
		zap.Duration("period", period),
	)
	return true
}

// Stop 取消调度；未运行时返回 false
func (p *Poller) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return false
	}
	p.cancel()
	p.cancel = nil
	p.period = 0

	p.logger.Debug("Poller stopped", zap.String("poller", p.name))
	return true
}

// Running 是否存在调度
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Period 当前调度周期，未运行时为 0
func (p *Poller) Period() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.period
}

// Wait 等待已停止调度的循环和未完成的 tick 结束
func (p *Poller) Wait() {
	p.inflight.Wait()
}

func (p *Poller) loop(ctx context.Context, tick TickFunc, period time.Duration) {
	defer p.inflight.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.inflight.Add(1)
			go p.invoke(ctx, tick)
		}
	}
}

func (p *Poller) invoke(ctx context.Context, tick TickFunc) {
	defer p.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Poller tick panicked",
				zap.String("poller", p.name),
				zap.Error(fmt.Errorf("panic: %v", r)),
			)
		}
	}()

	if err := tick(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("Poller tick failed",
			zap.String("poller", p.name),
			zap.Error(err),
		)
	}
}
