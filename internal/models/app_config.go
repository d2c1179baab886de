package models

import "time"

// Resolution 摄像头分辨率（仅供参考，探测时使用默认参数）
type Resolution struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	FPS    int `json:"fps" yaml:"fps"`
}

// 应用常量
const (
	PollingInterval     = 1000 * time.Millisecond
	MaxHistoryItems     = 100
	MaxEmotionHistory   = 10
	DefaultImageQuality = 80
)

// DefaultCameraResolution 默认摄像头分辨率
var DefaultCameraResolution = Resolution{Width: 640, Height: 480, FPS: 30}
