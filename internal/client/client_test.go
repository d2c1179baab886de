package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xjzhong-027/sleepDetect/common/config"
	"github.com/xjzhong-027/sleepDetect/internal/models"
	"go.uber.org/zap"
)

func setupTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.BackendConfig{BaseURL: srv.URL}, zap.NewNop())
}

func TestClient_StartMonitoring_DecodesMessage(t *testing.T) {
	c := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathStartMonitoring, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"监测已开始"}`))
	})

	resp, err := c.StartMonitoring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.MonitoringStartedMessage, resp.Message)
}

func TestClient_Non2xx_IsBackendUnavailable(t *testing.T) {
	c := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"无法初始化摄像头"}`))
	})

	_, err := c.StartMonitoring(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, PathStartMonitoring, statusErr.Path)
}

func TestClient_NetworkFailure_IsBackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(config.BackendConfig{BaseURL: url}, zap.NewNop())
	err := c.StopMonitoring(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

func TestClient_BadJSON_IsUnexpectedResponse(t *testing.T) {
	c := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.MonitoringData(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedResponse))
	assert.False(t, errors.Is(err, ErrBackendUnavailable))
}

func TestClient_MonitoringData_MissingFieldsStayNil(t *testing.T) {
	c := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"posture":{"current":"正常"},"wake":{}}`))
	})

	resp, err := c.MonitoringData(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Posture)
	require.NotNil(t, resp.Posture.Current)
	assert.Equal(t, "正常", *resp.Posture.Current)
	assert.Nil(t, resp.Emotion)
	require.NotNil(t, resp.Wake)
	assert.Nil(t, resp.Wake.Count)
}

func TestClient_MonitoringData_FullBackendPayload(t *testing.T) {
	c := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "posture": {"current": "正常仰睡", "statistics": {"正常仰睡": 12.5, "侧睡": 3.0}},
		  "emotion": {"current": "平静", "history": [["平静", "12:00:01"], ["哭闹", "12:03:10"]]},
		  "wake": {"count": 3}
		}`))
	})

	resp, err := c.MonitoringData(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Posture)
	assert.Equal(t, "正常仰睡", *resp.Posture.Current)
	require.NotNil(t, resp.Emotion)
	assert.Equal(t, "平静", *resp.Emotion.Current)
	assert.JSONEq(t, `[["平静","12:00:01"],["哭闹","12:03:10"]]`, string(resp.Emotion.History))
	require.NotNil(t, resp.Wake)
	assert.Equal(t, 3, *resp.Wake.Count)
}

func TestClient_MonitoringData_ErrorBody(t *testing.T) {
	c := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"获取监测数据失败"}`))
	})

	_, err := c.MonitoringData(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "获取监测数据失败")
}

func TestClient_ToggleFeature_PostsJSONBody(t *testing.T) {
	var got models.ToggleFeatureRequest
	c := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathToggleFeature, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":"功能 wake 已启用"}`))
	})

	require.NoError(t, c.ToggleFeature(context.Background(), models.FeatureWake, true))
	assert.Equal(t, models.FeatureWake, got.Feature)
	assert.True(t, got.Enabled)
}

func TestClient_DefaultBaseURL(t *testing.T) {
	c := New(config.BackendConfig{}, nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}
