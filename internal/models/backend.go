package models

import "encoding/json"

// 后端 HTTP 接口的请求/响应结构
// 指针字段用于区分“缺失”与零值

// MessageResponse /start_monitoring, /stop_monitoring
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MonitoringDataResponse /get_monitoring_data
type MonitoringDataResponse struct {
	Posture *PostureData `json:"posture,omitempty"`
	Emotion *EmotionData `json:"emotion,omitempty"`
	Wake    *WakeData    `json:"wake,omitempty"`
}

// 只读取 current；statistics/history 原样保留，格式变化不影响解析
type PostureData struct {
	Current    *string         `json:"current,omitempty"`
	Statistics json.RawMessage `json:"statistics,omitempty"`
}

// EmotionData history 由后端以 [["情绪","时间"], ...] 形式返回
type EmotionData struct {
	Current *string         `json:"current,omitempty"`
	History json.RawMessage `json:"history,omitempty"`
}

type WakeData struct {
	Count *int `json:"count,omitempty"`
}

// ToggleFeatureRequest /toggle_feature 请求体
type ToggleFeatureRequest struct {
	Feature Feature `json:"feature"`
	Enabled bool    `json:"enabled"`
}

// HealthResponse /health
type HealthResponse struct {
	Status       string `json:"status"`
	CameraStatus string `json:"camera_status"`
	Timestamp    string `json:"timestamp,omitempty"`
}
