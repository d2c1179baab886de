package client

import (
	"context"

	"github.com/xjzhong-027/sleepDetect/internal/models"
)

// 后端接口路径
const (
	PathStartMonitoring   = "/start_monitoring"
	PathStopMonitoring    = "/stop_monitoring"
	PathGetMonitoringData = "/get_monitoring_data"
	PathGetFeatures       = "/get_features"
	PathToggleFeature     = "/toggle_feature"
	PathHealth            = "/health"
)

// StartMonitoring GET /start_monitoring
func (c *Client) StartMonitoring(ctx context.Context) (models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.Get(ctx, PathStartMonitoring, &resp)
	return resp, err
}

// StopMonitoring GET /stop_monitoring，成功时响应体被忽略
func (c *Client) StopMonitoring(ctx context.Context) error {
	return c.Get(ctx, PathStopMonitoring, nil)
}

// MonitoringData GET /get_monitoring_data
func (c *Client) MonitoringData(ctx context.Context) (models.MonitoringDataResponse, error) {
	var resp models.MonitoringDataResponse
	err := c.Get(ctx, PathGetMonitoringData, &resp)
	return resp, err
}

// Features GET /get_features，返回原始键值（由调用方校验）
func (c *Client) Features(ctx context.Context) (map[string]bool, error) {
	var resp map[string]bool
	err := c.Get(ctx, PathGetFeatures, &resp)
	return resp, err
}

// ToggleFeature POST /toggle_feature，成功时响应体被忽略
func (c *Client) ToggleFeature(ctx context.Context, feature models.Feature, enabled bool) error {
	return c.Post(ctx, PathToggleFeature, models.ToggleFeatureRequest{Feature: feature, Enabled: enabled}, nil)
}

// Health GET /health
func (c *Client) Health(ctx context.Context) (models.HealthResponse, error) {
	var resp models.HealthResponse
	err := c.Get(ctx, PathHealth, &resp)
	return resp, err
}
