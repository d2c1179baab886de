package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/xjzhong-027/sleepDetect/common/config"
	"go.uber.org/zap"
)

// DefaultBaseURL 检测后端默认地址
const DefaultBaseURL = "http://127.0.0.1:5000"

var (
	// ErrBackendUnavailable 网络错误或非 2xx 响应
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrUnexpectedResponse 2xx 但响应体不符合预期
	ErrUnexpectedResponse = errors.New("unexpected backend response")
)

// StatusError 后端返回非 2xx
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, strings.TrimSpace(body))
}

func (e *StatusError) Unwrap() error { return ErrBackendUnavailable }

// Client 检测后端 HTTP 客户端
// 不重试；只有 BackendConfig.Timeout > 0 时才设置超时
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New 创建客户端
func New(cfg config.BackendConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	return &Client{
		httpClient: rc,
		logger:     logger,
	}
}

// BaseURL 当前后端地址
func (c *Client) BaseURL() string {
	return c.httpClient.BaseURL
}

// Get 发送 GET 请求，out 非 nil 时解析 JSON 响应体
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post 发送 JSON POST 请求
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Debug("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %w", ErrBackendUnavailable, method, path, err)
	}

	if !resp.IsSuccess() {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnexpectedResponse, method, path, err)
	}
	return nil
}
