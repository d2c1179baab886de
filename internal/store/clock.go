package store

import (
	"context"
	"sync"
	"time"

	"github.com/xjzhong-027/sleepDetect/internal/models"
	"github.com/xjzhong-027/sleepDetect/internal/poller"
	"go.uber.org/zap"
)

// ClockStore 每秒刷新的时钟，与监测会话无关
type ClockStore struct {
	poller *poller.Poller
	now    func() time.Time

	mu    sync.RWMutex
	state models.ClockState

	observable *Observable[models.ClockState]
}

// NewClockStore 创建时钟
func NewClockStore(logger *zap.Logger) *ClockStore {
	return &ClockStore{
		poller:     poller.New("clock", logger),
		now:        time.Now,
		state:      models.ClockState{CurrentTime: time.Now()},
		observable: NewObservable[models.ClockState](),
	}
}

// Start 立即刷新一次，然后每秒刷新
func (c *ClockStore) Start() {
	if c.poller.Running() {
		return
	}
	c.update()
	c.poller.Start(func(context.Context) error {
		c.update()
		return nil
	}, time.Second)
}

// Running 是否在刷新
func (c *ClockStore) Running() bool {
	return c.poller.Running()
}

// Stop 停止刷新
func (c *ClockStore) Stop() {
	c.poller.Stop()
	c.poller.Wait()
}

// State 当前时间
func (c *ClockStore) State() models.ClockState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe 订阅时间变更
func (c *ClockStore) Subscribe() (<-chan models.ClockState, func()) {
	return c.observable.Subscribe()
}

func (c *ClockStore) update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CurrentTime = c.now()
	c.observable.Publish(c.state)
}
