// Package camera 摄像头权限探测
//
// 探测只用于确认本机存在可用的视频采集设备并且当前进程有权访问，
// 打开设备后立即释放，实际采集由检测后端完成。
package camera

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// DefaultDevicePattern 默认扫描的视频设备节点
const DefaultDevicePattern = "/dev/video*"

// Prober 摄像头权限探测，拒绝或不可用时返回 false，不返回错误
type Prober interface {
	Probe(ctx context.Context) bool
}

// ProbeFunc 函数适配器
type ProbeFunc func(ctx context.Context) bool

func (f ProbeFunc) Probe(ctx context.Context) bool { return f(ctx) }

// AlwaysGranted 用于采集完全在后端进行、本机无需摄像头的部署
var AlwaysGranted Prober = ProbeFunc(func(context.Context) bool { return true })

// DeviceProber 通过打开 V4L2 设备节点并查询采集能力来探测权限
type DeviceProber struct {
	device  string
	pattern string
	logger  *zap.Logger
}

// NewDeviceProber device 为空时扫描 DefaultDevicePattern
func NewDeviceProber(device string, logger *zap.Logger) *DeviceProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceProber{
		device:  device,
		pattern: DefaultDevicePattern,
		logger:  logger,
	}
}

// Probe 依次尝试候选设备，找到支持视频采集的设备即返回 true
func (p *DeviceProber) Probe(ctx context.Context) bool {
	devices, err := p.candidates()
	if err != nil || len(devices) == 0 {
		p.logger.Warn("Failed to acquire camera permission: no video device",
			zap.String("device", p.device),
			zap.String("pattern", p.pattern),
			zap.Error(err),
		)
		return false
	}

	var lastErr error
	for _, dev := range devices {
		if ctx.Err() != nil {
			return false
		}
		capture, err := queryCapture(dev)
		if err != nil {
			lastErr = err
			if errors.Is(err, fs.ErrPermission) {
				p.logger.Warn("Camera access denied", zap.String("device", dev), zap.Error(err))
			} else {
				p.logger.Debug("Camera probe failed", zap.String("device", dev), zap.Error(err))
			}
			continue
		}
		if capture {
			p.logger.Debug("Camera permission granted", zap.String("device", dev))
			return true
		}
	}

	p.logger.Error("Failed to acquire camera permission",
		zap.Strings("devices", devices),
		zap.Error(lastErr),
	)
	return false
}

func (p *DeviceProber) candidates() ([]string, error) {
	if p.device != "" {
		return []string{p.device}, nil
	}
	matches, err := filepath.Glob(p.pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
