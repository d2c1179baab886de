package store

import (
	"errors"

	"github.com/xjzhong-027/sleepDetect/internal/client"
)

var (
	// ErrPermissionDenied 摄像头权限被拒绝或不可用
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrUnknownFeature 不在功能枚举中的名称
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrStoreClosed Close 之后不能再开始监测
	ErrStoreClosed = errors.New("monitoring store closed")

	// ErrBackendUnavailable 后端网络错误或非 2xx
	ErrBackendUnavailable = client.ErrBackendUnavailable
	// ErrUnexpectedResponse 后端 2xx 但响应体不符合预期
	ErrUnexpectedResponse = client.ErrUnexpectedResponse
)
