package models

import "time"

// NotDetected 尚未收到任何样本时的占位标签
const NotDetected = "未检测"

// MonitoringStartedMessage 后端 /start_monitoring 成功时返回的确认文本
const MonitoringStartedMessage = "监测已开始"

// MonitoringState 监测会话状态与最新遥测
type MonitoringState struct {
	IsMonitoring   bool    `json:"isMonitoring"`
	CurrentEmotion string  `json:"currentEmotion"`
	CurrentPosture string  `json:"currentPosture"`
	NightWakeCount int     `json:"nightWakeCount"`
	SleepDuration  float64 `json:"sleepDuration"` // 单位由后端定义，目前后端未提供

	SessionID string    `json:"sessionId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// NewMonitoringState 初始状态
func NewMonitoringState() MonitoringState {
	return MonitoringState{
		CurrentEmotion: NotDetected,
		CurrentPosture: NotDetected,
	}
}

// TelemetrySample 一次遥测（姿势、情绪、夜醒次数）
type TelemetrySample struct {
	SessionID      string    `json:"sessionId"`
	Posture        string    `json:"posture"`
	Emotion        string    `json:"emotion"`
	NightWakeCount int       `json:"nightWakeCount"`
	ObservedAt     time.Time `json:"observedAt"`
}

// Sample 从状态中提取遥测
func (s MonitoringState) Sample() TelemetrySample {
	observed := s.UpdatedAt
	if observed.IsZero() {
		observed = time.Now()
	}
	return TelemetrySample{
		SessionID:      s.SessionID,
		Posture:        s.CurrentPosture,
		Emotion:        s.CurrentEmotion,
		NightWakeCount: s.NightWakeCount,
		ObservedAt:     observed,
	}
}

// SameTelemetry 遥测内容是否相同（忽略时间）
func (t TelemetrySample) SameTelemetry(o TelemetrySample) bool {
	return t.SessionID == o.SessionID &&
		t.Posture == o.Posture &&
		t.Emotion == o.Emotion &&
		t.NightWakeCount == o.NightWakeCount
}

// ClockState 时钟
type ClockState struct {
	CurrentTime time.Time `json:"currentTime"`
}
