package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// method 限定请求方法，其它方法返回 405
func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != m {
			w.Header().Set("Allow", m)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterMonitoringRoutes 会话控制与遥测
func (r *Router) RegisterMonitoringRoutes(h *MonitoringHandler) {
	r.Handle("/api/v1/monitoring/state", method(http.MethodGet, h.GetState))
	r.Handle("/api/v1/monitoring/start", method(http.MethodPost, h.Start))
	r.Handle("/api/v1/monitoring/stop", method(http.MethodPost, h.Stop))
	r.Handle("/api/v1/monitoring/history", method(http.MethodGet, h.GetHistory))
	r.Handle("/api/v1/monitoring/events", method(http.MethodGet, h.Events))
}

// RegisterFeatureRoutes 检测功能开关
func (r *Router) RegisterFeatureRoutes(h *FeatureHandler) {
	r.Handle("/api/v1/features", method(http.MethodGet, h.GetFeatures))
	r.Handle("/api/v1/features/refresh", method(http.MethodPost, h.Refresh))
	r.Handle("/api/v1/features/toggle", method(http.MethodPost, h.Toggle))
}

// RegisterSystemRoutes 时钟与健康检查
func (r *Router) RegisterSystemRoutes(h *SystemHandler) {
	r.Handle("/api/v1/clock", method(http.MethodGet, h.GetClock))
	r.Handle("/api/v1/health", method(http.MethodGet, h.Health))
}
