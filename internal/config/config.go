// Package config 监测代理配置
//
// 加载顺序：默认值 → YAML 文件（可选）→ 环境变量，命令行参数由 cmd 在最后覆盖。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xjzhong-027/sleepDetect/common/config"
	"github.com/xjzhong-027/sleepDetect/internal/client"
	"github.com/xjzhong-027/sleepDetect/internal/models"
	"gopkg.in/yaml.v3"
)

// Config 监测代理配置
type Config struct {
	Backend config.BackendConfig `yaml:"backend"`
	Redis   config.RedisConfig   `yaml:"redis"`
	MQTT    config.MQTTConfig    `yaml:"mqtt"`

	Monitor struct {
		PollingInterval time.Duration `yaml:"polling_interval"` // 遥测轮询间隔，默认 1s
		StopOnExit      bool          `yaml:"stop_on_exit"`     // 退出时是否请求后端停止监测
	} `yaml:"monitor"`

	Camera struct {
		Device    string `yaml:"device"`     // 为空时扫描 /dev/video*
		SkipProbe bool   `yaml:"skip_probe"` // 采集只在后端进行时跳过本机探测
	} `yaml:"camera"`

	// 遥测转发
	Telemetry struct {
		Stream         string        `yaml:"stream"`       // Redis Streams 输出流
		StreamMaxLen   int64         `yaml:"stream_maxlen"`
		LatestKey      string        `yaml:"latest_key"`   // 最新状态缓存键
		LatestTTL      time.Duration `yaml:"latest_ttl"`
		TopicPrefix    string        `yaml:"topic_prefix"` // MQTT 事件主题前缀
		CommandTopic   string        `yaml:"command_topic"`
		PublishTimeout time.Duration `yaml:"publish_timeout"`
		ReportInterval time.Duration `yaml:"report_interval"` // 转发指标日志间隔
	} `yaml:"telemetry"`

	HTTP struct {
		Addr string `yaml:"addr"` // 本地看板 API 监听地址
	} `yaml:"http"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default 默认配置
func Default() *Config {
	cfg := &Config{}

	cfg.Backend.BaseURL = client.DefaultBaseURL
	cfg.Backend.Timeout = 10 * time.Second

	cfg.Redis.Addr = "localhost:6379"

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "sleepdetect-monitor"
	cfg.MQTT.QoS = 1

	cfg.Monitor.PollingInterval = models.PollingInterval

	cfg.Telemetry.Stream = "sleepdetect:telemetry:stream"
	cfg.Telemetry.StreamMaxLen = 10000
	cfg.Telemetry.LatestKey = "sleepdetect:monitoring:latest"
	cfg.Telemetry.LatestTTL = 30 * time.Second
	cfg.Telemetry.TopicPrefix = "sleepdetect/monitor"
	cfg.Telemetry.CommandTopic = "sleepdetect/monitor/command"
	cfg.Telemetry.PublishTimeout = 2 * time.Second
	cfg.Telemetry.ReportInterval = time.Minute

	cfg.HTTP.Addr = "127.0.0.1:8090"

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	return cfg
}

// Load 加载配置，path 为空时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	c.Backend.LoadFromEnv("BACKEND")
	c.Redis.LoadFromEnv("REDIS")
	c.MQTT.LoadFromEnv("MQTT")

	if ms, err := parseIntEnv("POLLING_INTERVAL_MS"); err != nil {
		return err
	} else if ms != nil {
		c.Monitor.PollingInterval = time.Duration(*ms) * time.Millisecond
	}
	c.Monitor.StopOnExit = getEnvBool("STOP_ON_EXIT", c.Monitor.StopOnExit)

	c.Camera.Device = getEnv("CAMERA_DEVICE", c.Camera.Device)
	c.Camera.SkipProbe = getEnvBool("CAMERA_SKIP_PROBE", c.Camera.SkipProbe)

	c.Telemetry.Stream = getEnv("TELEMETRY_STREAM", c.Telemetry.Stream)
	c.Telemetry.LatestKey = getEnv("TELEMETRY_LATEST_KEY", c.Telemetry.LatestKey)
	c.Telemetry.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", c.Telemetry.TopicPrefix)
	c.Telemetry.CommandTopic = getEnv("MQTT_COMMAND_TOPIC", c.Telemetry.CommandTopic)

	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend base url is required")
	}
	if c.Monitor.PollingInterval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %s", c.Monitor.PollingInterval)
	}
	if c.Redis.Enabled && c.Telemetry.Stream == "" {
		return errors.New("telemetry stream is required when redis is enabled")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return errors.New("mqtt broker is required when mqtt is enabled")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("invalid mqtt qos %d", c.MQTT.QoS)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func parseIntEnv(key string) (*int, error) {
	value := os.Getenv(key)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &n, nil
}
