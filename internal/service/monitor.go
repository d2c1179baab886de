// Package service 组装监测代理各组件
package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/xjzhong-027/sleepDetect/common/logger"
	mqttcommon "github.com/xjzhong-027/sleepDetect/common/mqtt"
	rediscommon "github.com/xjzhong-027/sleepDetect/common/redis"
	"github.com/xjzhong-027/sleepDetect/internal/camera"
	"github.com/xjzhong-027/sleepDetect/internal/client"
	"github.com/xjzhong-027/sleepDetect/internal/config"
	"github.com/xjzhong-027/sleepDetect/internal/consumer"
	"github.com/xjzhong-027/sleepDetect/internal/history"
	httpapi "github.com/xjzhong-027/sleepDetect/internal/http"
	"github.com/xjzhong-027/sleepDetect/internal/publisher"
	"github.com/xjzhong-027/sleepDetect/internal/store"
	"go.uber.org/zap"
)

// MonitorService 监测代理
type MonitorService struct {
	config *config.Config
	logger *zap.Logger

	backend    *client.Client
	monitoring *store.MonitoringStore
	features   *store.FeatureStore
	clock      *store.ClockStore
	recorder   *history.Recorder

	redis      *redis.Client
	mqttClient *mqttcommon.Client
	forwarder  *consumer.TelemetryForwarder
	commands   *consumer.CommandConsumer

	router *httpapi.Router
	server *Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitorService 创建监测代理，Redis/MQTT 只在启用时连接
func NewMonitorService(cfg *config.Config, log *zap.Logger) (*MonitorService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &MonitorService{config: cfg, logger: log}

	s.backend = client.New(cfg.Backend, logger.Named(log, "client"))

	var prober camera.Prober = camera.AlwaysGranted
	if !cfg.Camera.SkipProbe {
		prober = camera.NewDeviceProber(cfg.Camera.Device, logger.Named(log, "camera"))
	}

	s.monitoring = store.NewMonitoringStore(s.backend, prober, store.MonitoringOptions{
		Interval: cfg.Monitor.PollingInterval,
	}, logger.Named(log, "monitoring"))
	s.features = store.NewFeatureStore(s.backend, logger.Named(log, "features"))
	s.clock = store.NewClockStore(logger.Named(log, "clock"))
	s.recorder = history.NewRecorder(0, 0)

	sinks, err := s.connectSinks()
	if err != nil {
		s.closeConnections()
		return nil, err
	}
	s.forwarder = consumer.NewTelemetryForwarder(s.monitoring, s.recorder, sinks, consumer.ForwarderOptions{
		PublishTimeout: cfg.Telemetry.PublishTimeout,
		ReportInterval: cfg.Telemetry.ReportInterval,
	}, logger.Named(log, "forwarder"))

	if s.mqttClient != nil {
		s.commands = consumer.NewCommandConsumer(
			cfg.Telemetry.CommandTopic,
			cfg.MQTT.QoS,
			s.mqttClient,
			s.monitoring,
			s.features,
			logger.Named(log, "commands"),
		)
	}

	s.router = httpapi.NewRouter(log)
	s.router.RegisterMonitoringRoutes(httpapi.NewMonitoringHandler(s.monitoring, s.recorder, log))
	s.router.RegisterFeatureRoutes(httpapi.NewFeatureHandler(s.features, log))
	s.router.RegisterSystemRoutes(httpapi.NewSystemHandler(s.clock, s.backend, s.monitoring, log))
	s.server = NewServer(cfg.HTTP.Addr, s.router, logger.Named(log, "http"))

	return s, nil
}

func (s *MonitorService) connectSinks() ([]publisher.Sink, error) {
	var sinks []publisher.Sink

	if s.config.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rdb, err := rediscommon.Connect(ctx, &s.config.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.redis = rdb
		sinks = append(sinks, publisher.NewRedisSink(s.redis, publisher.RedisSinkOptions{
			Stream:       s.config.Telemetry.Stream,
			StreamMaxLen: s.config.Telemetry.StreamMaxLen,
			LatestKey:    s.config.Telemetry.LatestKey,
			LatestTTL:    s.config.Telemetry.LatestTTL,
		}, logger.Named(s.logger, "redis-sink")))
	}

	if s.config.MQTT.Enabled {
		mqttClient, err := mqttcommon.NewClient(&s.config.MQTT, logger.Named(s.logger, "mqtt"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
		}
		s.mqttClient = mqttClient
		sinks = append(sinks, publisher.NewMQTTSink(mqttClient, s.config.Telemetry.TopicPrefix, s.config.MQTT.QoS, logger.Named(s.logger, "mqtt-sink")))
	}

	return sinks, nil
}

// Handler 看板 API
func (s *MonitorService) Handler() http.Handler { return s.router }

// Addr HTTP 实际监听地址
func (s *MonitorService) Addr() string { return s.server.Addr() }

// Monitoring 会话存储
func (s *MonitorService) Monitoring() *store.MonitoringStore { return s.monitoring }

// Features 功能开关存储
func (s *MonitorService) Features() *store.FeatureStore { return s.features }

// Start 启动时钟、转发、命令订阅和 HTTP 服务，并尝试拉取一次功能开关
// 不会自动开始监测
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Starting monitor service components",
		zap.String("backend", s.backend.BaseURL()),
		zap.Duration("polling_interval", s.monitoring.Interval()),
		zap.Bool("redis", s.redis != nil),
		zap.Bool("mqtt", s.mqttClient != nil),
	)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.clock.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.forwarder.Run(runCtx); err != nil {
			s.logger.Error("Telemetry forwarder failed", zap.Error(err))
		}
	}()

	if s.commands != nil {
		if err := s.commands.Start(runCtx); err != nil {
			s.abortStart(false)
			return fmt.Errorf("failed to start command consumer: %w", err)
		}
	}

	if err := s.server.Start(); err != nil {
		s.abortStart(s.commands != nil)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// 功能开关失败只记录日志，看板仍可手动刷新
	fetchCtx, fetchCancel := context.WithTimeout(runCtx, 5*time.Second)
	defer fetchCancel()
	if err := s.features.FetchFeatures(fetchCtx); err != nil {
		s.logger.Warn("Initial feature fetch failed", zap.Error(err))
	}

	s.logger.Info("Monitor service started successfully", zap.String("addr", s.server.Addr()))
	return nil
}

// abortStart 回滚 Start 中已启动的组件
func (s *MonitorService) abortStart(subscribed bool) {
	if subscribed {
		if err := s.commands.Stop(); err != nil {
			s.logger.Warn("Error stopping command consumer", zap.Error(err))
		}
	}
	s.clock.Stop()
	s.cancel()
	s.wg.Wait()
}

// Stop 停止所有组件；STOP_ON_EXIT 开启时先通知后端停止监测
func (s *MonitorService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping monitor service")

	if err := s.server.Stop(ctx); err != nil {
		s.logger.Error("Error stopping HTTP server", zap.Error(err))
	}

	if s.commands != nil {
		if err := s.commands.Stop(); err != nil {
			s.logger.Error("Error stopping command consumer", zap.Error(err))
		}
	}

	if s.config.Monitor.StopOnExit && s.monitoring.State().IsMonitoring {
		if err := s.monitoring.StopMonitoring(ctx); err != nil {
			s.logger.Error("Failed to stop monitoring on exit", zap.Error(err))
		}
	}

	s.clock.Stop()
	// 关闭会话存储会关闭订阅通道，转发器随之退出
	s.monitoring.Close()
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.closeConnections()

	s.logger.Info("Monitor service stopped")
	return nil
}

func (s *MonitorService) closeConnections() {
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	if s.redis != nil {
		if err := rediscommon.Close(s.redis); err != nil {
			s.logger.Warn("Error closing redis", zap.Error(err))
		}
	}
}
