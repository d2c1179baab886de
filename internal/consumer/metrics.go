package consumer

import (
	"sync"
	"time"
)

// Metrics 转发统计
type Metrics struct {
	mu sync.RWMutex

	SnapshotsReceived int64            // 收到的状态快照
	EventsForwarded   int64            // 所有 sink 均成功的事件
	EventsFailed      int64            // 至少一个 sink 失败的事件
	SinkErrors        map[string]int64 // 按 sink 统计失败次数
	HistoryRecorded   int64            // 写入历史的遥测条数

	LastForwardTime time.Time
	StartTime       time.Time
}

func newMetrics() *Metrics {
	return &Metrics{
		SinkErrors: make(map[string]int64),
		StartTime:  time.Now(),
	}
}

// GetSnapshot 获取指标快照（线程安全）
func (m *Metrics) GetSnapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sinkErrors := make(map[string]int64, len(m.SinkErrors))
	for k, v := range m.SinkErrors {
		sinkErrors[k] = v
	}
	return Metrics{
		SnapshotsReceived: m.SnapshotsReceived,
		EventsForwarded:   m.EventsForwarded,
		EventsFailed:      m.EventsFailed,
		SinkErrors:        sinkErrors,
		HistoryRecorded:   m.HistoryRecorded,
		LastForwardTime:   m.LastForwardTime,
		StartTime:         m.StartTime,
	}
}

func (m *Metrics) incReceived(recorded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotsReceived++
	if recorded {
		m.HistoryRecorded++
	}
}

func (m *Metrics) incForwarded(failedSinks []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(failedSinks) == 0 {
		m.EventsForwarded++
	} else {
		m.EventsFailed++
		for _, name := range failedSinks {
			m.SinkErrors[name]++
		}
	}
	m.LastForwardTime = time.Now()
}
