package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqttcommon "github.com/xjzhong-027/sleepDetect/common/mqtt"
	"github.com/xjzhong-027/sleepDetect/internal/models"
	"go.uber.org/zap"
)

// 远程命令
const (
	ActionStartMonitoring = "start_monitoring"
	ActionStopMonitoring  = "stop_monitoring"
	ActionFetchFeatures   = "fetch_features"
	ActionToggleFeature   = "toggle_feature"
)

// Command MQTT 命令消息
type Command struct {
	Action    string `json:"action"`
	Feature   string `json:"feature,omitempty"`
	Enabled   *bool  `json:"enabled,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// MonitoringController 会话控制（store.MonitoringStore）
type MonitoringController interface {
	StartMonitoring(ctx context.Context) error
	StopMonitoring(ctx context.Context) error
}

// FeatureController 功能开关控制（store.FeatureStore）
type FeatureController interface {
	FetchFeatures(ctx context.Context) error
	ToggleFeature(ctx context.Context, feature models.Feature, enabled bool) error
}

// MQTTSubscriber 由 common/mqtt.Client 实现
type MQTTSubscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// CommandConsumer 订阅命令主题，把命令转给各 store
type CommandConsumer struct {
	topic      string
	qos        byte
	subscriber MQTTSubscriber
	monitoring MonitoringController
	features   FeatureController
	timeout    time.Duration
	logger     *zap.Logger

	mu      sync.RWMutex
	baseCtx context.Context
}

// NewCommandConsumer 创建命令消费者
func NewCommandConsumer(
	topic string,
	qos byte,
	subscriber MQTTSubscriber,
	monitoring MonitoringController,
	features FeatureController,
	logger *zap.Logger,
) *CommandConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandConsumer{
		topic:      topic,
		qos:        qos,
		subscriber: subscriber,
		monitoring: monitoring,
		features:   features,
		timeout:    30 * time.Second,
		logger:     logger,
		baseCtx:    context.Background(),
	}
}

// Start 订阅命令主题
func (c *CommandConsumer) Start(ctx context.Context) error {
	if c.topic == "" {
		return fmt.Errorf("command topic not configured")
	}
	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()

	if err := c.subscriber.Subscribe(c.topic, c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to command topic: %w", err)
	}
	c.logger.Info("MQTT command consumer started", zap.String("topic", c.topic))
	return nil
}

// Stop 取消订阅
func (c *CommandConsumer) Stop() error {
	if err := c.subscriber.Unsubscribe(c.topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.String("topic", c.topic), zap.Error(err))
		return err
	}
	c.logger.Info("MQTT command consumer stopped")
	return nil
}

// handleMessage 解析并执行命令，错误由 MQTT 客户端记录
func (c *CommandConsumer) handleMessage(topic string, payload []byte) error {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command: %w", err)
	}

	c.logger.Info("Received monitoring command",
		zap.String("topic", topic),
		zap.String("action", cmd.Action),
		zap.String("request_id", cmd.RequestID),
	)

	c.mu.RLock()
	base := c.baseCtx
	c.mu.RUnlock()
	ctx, cancel := context.WithTimeout(base, c.timeout)
	defer cancel()

	var err error
	switch cmd.Action {
	case ActionStartMonitoring:
		err = c.monitoring.StartMonitoring(ctx)
	case ActionStopMonitoring:
		err = c.monitoring.StopMonitoring(ctx)
	case ActionFetchFeatures:
		err = c.features.FetchFeatures(ctx)
	case ActionToggleFeature:
		feature, perr := models.ParseFeature(cmd.Feature)
		if perr != nil {
			return fmt.Errorf("toggle_feature: %w", perr)
		}
		if cmd.Enabled == nil {
			return fmt.Errorf("toggle_feature %s: enabled is required", feature)
		}
		err = c.features.ToggleFeature(ctx, feature, *cmd.Enabled)
	default:
		return fmt.Errorf("unknown command action %q", cmd.Action)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Action, err)
	}
	return nil
}
