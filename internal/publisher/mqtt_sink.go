package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MQTTPublisher MQTT 发布接口（由 common/mqtt.Client 实现）
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTSink 事件发布到 <prefix>/<kind>，会话启停事件保留（retained）
type MQTTSink struct {
	publisher   MQTTPublisher
	topicPrefix string
	qos         byte
	logger      *zap.Logger
}

// NewMQTTSink 创建 MQTT 转发
func NewMQTTSink(publisher MQTTPublisher, topicPrefix string, qos byte, logger *zap.Logger) *MQTTSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MQTTSink{
		publisher:   publisher,
		topicPrefix: strings.TrimRight(topicPrefix, "/"),
		qos:         qos,
		logger:      logger,
	}
}

func (s *MQTTSink) Name() string { return "mqtt" }

// Topic 事件对应的主题
func (s *MQTTSink) Topic(kind EventKind) string {
	return s.topicPrefix + "/" + string(kind)
}

// Publish 发布 JSON 事件
func (s *MQTTSink) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	topic := s.Topic(event.Kind)
	if err := s.publisher.Publish(topic, s.qos, event.Kind.Lifecycle(), payload); err != nil {
		return err
	}

	s.logger.Debug("Published monitoring event to MQTT",
		zap.String("kind", string(event.Kind)),
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)
	return nil
}
