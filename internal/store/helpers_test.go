package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/xjzhong-027/sleepDetect/common/config"
	"github.com/xjzhong-027/sleepDetect/internal/camera"
	"github.com/xjzhong-027/sleepDetect/internal/client"
	"go.uber.org/zap"
)

// testBackend 模拟检测后端，按路径返回预设响应并计数
type testBackend struct {
	mu       sync.Mutex
	calls    map[string]int
	handlers map[string]http.HandlerFunc
}

func newTestBackend() *testBackend {
	return &testBackend{
		calls:    make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
}

func (b *testBackend) handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = h
}

func (b *testBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *testBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *testBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.Path]++
	h, ok := b.handlers[r.URL.Path]
	b.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func setupBackend(t *testing.T) (*testBackend, *client.Client) {
	backend := newTestBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return backend, client.New(config.BackendConfig{BaseURL: srv.URL}, zap.NewNop())
}

func grantCamera() camera.Prober {
	return camera.AlwaysGranted
}

func denyCamera() camera.Prober {
	return camera.ProbeFunc(func(context.Context) bool { return false })
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
