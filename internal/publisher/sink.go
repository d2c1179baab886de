// Package publisher 把监测状态转发到外部消息系统（Redis Streams、MQTT）
package publisher

import (
	"context"
	"time"

	"github.com/xjzhong-027/sleepDetect/internal/models"
)

// EventKind 事件类型
type EventKind string

const (
	EventSessionStarted EventKind = "session_started"
	EventSessionStopped EventKind = "session_stopped"
	EventTelemetry      EventKind = "telemetry"
)

// Lifecycle 是否为会话启停事件
func (k EventKind) Lifecycle() bool {
	return k == EventSessionStarted || k == EventSessionStopped
}

// Event 一次状态变更
type Event struct {
	Kind  EventKind              `json:"kind"`
	State models.MonitoringState `json:"state"`
	At    time.Time              `json:"at"`
}

// NewEvent 根据前后两次快照判断事件类型
func NewEvent(prev, next models.MonitoringState) Event {
	kind := EventTelemetry
	switch {
	case !prev.IsMonitoring && next.IsMonitoring:
		kind = EventSessionStarted
	case prev.IsMonitoring && !next.IsMonitoring:
		kind = EventSessionStopped
	}
	return Event{Kind: kind, State: next, At: time.Now()}
}

// Sink 事件接收方
type Sink interface {
	Name() string
	Publish(ctx context.Context, event Event) error
}
