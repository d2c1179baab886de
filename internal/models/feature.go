package models

import "fmt"

// Feature 后端可独立开关的检测子系统
type Feature string

const (
	FeaturePosture Feature = "posture"
	FeatureEmotion Feature = "emotion"
	FeatureWake    Feature = "wake"
)

// AllFeatures 全部检测子系统（顺序固定）
var AllFeatures = []Feature{FeaturePosture, FeatureEmotion, FeatureWake}

// ParseFeature 解析功能名称
func ParseFeature(s string) (Feature, error) {
	for _, f := range AllFeatures {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown feature %q", s)
}

// Valid 是否为已知功能
func (f Feature) Valid() bool {
	_, err := ParseFeature(string(f))
	return err == nil
}

// FeatureState 各检测子系统的启用状态
type FeatureState struct {
	Features map[Feature]bool `json:"features"`
}

// DefaultFeatureState 初始状态：姿势、情绪开启，夜醒关闭
func DefaultFeatureState() FeatureState {
	return FeatureState{
		Features: map[Feature]bool{
			FeaturePosture: true,
			FeatureEmotion: true,
			FeatureWake:    false,
		},
	}
}

// Clone 深拷贝
func (s FeatureState) Clone() FeatureState {
	out := FeatureState{Features: make(map[Feature]bool, len(s.Features))}
	for k, v := range s.Features {
		out.Features[k] = v
	}
	return out
}

// Enabled 返回功能是否启用
func (s FeatureState) Enabled(f Feature) bool {
	return s.Features[f]
}
