// Package history 最近遥测记录，供看板展示趋势
package history

import (
	"sync"
	"time"

	"github.com/xjzhong-027/sleepDetect/internal/models"
)

// EmotionChange 情绪变化
type EmotionChange struct {
	Emotion   string    `json:"emotion"`
	ChangedAt time.Time `json:"changedAt"`
}

// Snapshot 历史快照
type Snapshot struct {
	Samples  []models.TelemetrySample `json:"samples"`
	Emotions []EmotionChange          `json:"emotions"`
}

// Recorder 保留最近 maxItems 条遥测和最近 maxEmotions 次情绪变化
type Recorder struct {
	maxItems    int
	maxEmotions int

	mu       sync.RWMutex
	samples  []models.TelemetrySample
	emotions []EmotionChange
}

// NewRecorder 参数 <=0 时使用 models.MaxHistoryItems / models.MaxEmotionHistory
func NewRecorder(maxItems, maxEmotions int) *Recorder {
	if maxItems <= 0 {
		maxItems = models.MaxHistoryItems
	}
	if maxEmotions <= 0 {
		maxEmotions = models.MaxEmotionHistory
	}
	return &Recorder{
		maxItems:    maxItems,
		maxEmotions: maxEmotions,
	}
}

// Record 记录一次遥测；与上一条内容相同、或尚未检测到任何数据时忽略
// 返回是否写入
func (r *Recorder) Record(s models.TelemetrySample) bool {
	if s.Posture == models.NotDetected && s.Emotion == models.NotDetected && s.NightWakeCount == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.samples); n > 0 && r.samples[n-1].SameTelemetry(s) {
		return false
	}
	r.samples = appendBounded(r.samples, s, r.maxItems)

	if s.Emotion != models.NotDetected {
		if n := len(r.emotions); n == 0 || r.emotions[n-1].Emotion != s.Emotion {
			r.emotions = appendBounded(r.emotions, EmotionChange{Emotion: s.Emotion, ChangedAt: s.ObservedAt}, r.maxEmotions)
		}
	}
	return true
}

// Snapshot 返回副本
func (r *Recorder) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		Samples:  append([]models.TelemetrySample(nil), r.samples...),
		Emotions: append([]EmotionChange(nil), r.emotions...),
	}
}

// Len 当前遥测条数
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.samples)
}

// Reset 清空
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
	r.emotions = nil
}

func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if over := len(s) - limit; over > 0 {
		s = append(s[:0:0], s[over:]...)
	}
	return s
}
