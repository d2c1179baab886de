package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackendConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://10.0.0.2:5000")
	t.Setenv("BACKEND_TIMEOUT_MS", "1500")

	c := BackendConfig{BaseURL: "http://127.0.0.1:5000"}
	c.LoadFromEnv("BACKEND")

	assert.Equal(t, "http://10.0.0.2:5000", c.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, c.Timeout)
}

func TestRedisConfig_LoadFromEnv_KeepsDefaultsOnBadInput(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	c := RedisConfig{Addr: "localhost:6379", DB: 2}
	c.LoadFromEnv("REDIS")

	assert.True(t, c.Enabled)
	assert.Equal(t, "localhost:6379", c.Addr)
	assert.Equal(t, 2, c.DB)
}

func TestMQTTConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("MQTT_CLIENT_ID", "agent-1")

	c := MQTTConfig{QoS: 1}
	c.LoadFromEnv("MQTT")

	assert.Equal(t, "tcp://broker:1883", c.Broker)
	assert.Equal(t, "agent-1", c.ClientID)
	assert.Equal(t, byte(2), c.QoS)
	assert.False(t, c.Enabled)
}
