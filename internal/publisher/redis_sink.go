package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	rediscommon "github.com/xjzhong-027/sleepDetect/common/redis"
	"go.uber.org/zap"
)

// RedisSinkOptions Redis 转发配置
type RedisSinkOptions struct {
	Stream       string        // 事件流，如 "sleepdetect:telemetry:stream"
	StreamMaxLen int64         // 近似裁剪长度，0 表示不裁剪
	LatestKey    string        // 最新状态缓存键，如 "sleepdetect:monitoring:latest"
	LatestTTL    time.Duration // 最新状态缓存 TTL
}

// RedisSink 事件写入 Redis Streams，同时缓存最新状态
type RedisSink struct {
	client *redis.Client
	opts   RedisSinkOptions
	logger *zap.Logger
}

// NewRedisSink 创建 Redis 转发
func NewRedisSink(client *redis.Client, opts RedisSinkOptions, logger *zap.Logger) *RedisSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSink{client: client, opts: opts, logger: logger}
}

func (s *RedisSink) Name() string { return "redis" }

// Publish XADD 事件并 SET 最新状态
func (s *RedisSink) Publish(ctx context.Context, event Event) error {
	streamID, err := rediscommon.PublishJSONToStream(ctx, s.client, s.opts.Stream, s.opts.StreamMaxLen, string(event.Kind), event)
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", s.opts.Stream, err)
	}

	if s.opts.LatestKey != "" {
		b, err := json.Marshal(event.State)
		if err != nil {
			return fmt.Errorf("failed to marshal latest state: %w", err)
		}
		if err := s.client.Set(ctx, s.opts.LatestKey, b, s.opts.LatestTTL).Err(); err != nil {
			return fmt.Errorf("failed to set cache %s: %w", s.opts.LatestKey, err)
		}
	}

	s.logger.Debug("Published monitoring event to Redis",
		zap.String("kind", string(event.Kind)),
		zap.String("stream", s.opts.Stream),
		zap.String("stream_id", streamID),
	)
	return nil
}
