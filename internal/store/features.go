package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/xjzhong-027/sleepDetect/internal/models"
	"go.uber.org/zap"
)

// FeatureBackend 功能开关存储依赖的后端接口
type FeatureBackend interface {
	Features(ctx context.Context) (map[string]bool, error)
	ToggleFeature(ctx context.Context, feature models.Feature, enabled bool) error
}

// FeatureStore 检测子系统开关状态，后端为唯一可信来源：先写后端，成功后再更新本地
type FeatureStore struct {
	backend FeatureBackend
	logger  *zap.Logger

	mu    sync.RWMutex
	state models.FeatureState

	observable *Observable[models.FeatureState]
}

// NewFeatureStore 创建功能开关存储，初始为默认开关
func NewFeatureStore(backend FeatureBackend, logger *zap.Logger) *FeatureStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureStore{
		backend:    backend,
		logger:     logger,
		state:      models.DefaultFeatureState(),
		observable: NewObservable[models.FeatureState](),
	}
}

// FetchFeatures 从后端拉取并整体替换开关状态
// 响应缺少任一功能时返回 ErrUnexpectedResponse，未知键被忽略
func (s *FeatureStore) FetchFeatures(ctx context.Context) error {
	raw, err := s.backend.Features(ctx)
	if err != nil {
		err = fmt.Errorf("fetch features: %w", err)
		s.logger.Error("Failed to fetch features", zap.Error(err))
		return err
	}

	next := models.FeatureState{Features: make(map[models.Feature]bool, len(models.AllFeatures))}
	for _, f := range models.AllFeatures {
		enabled, ok := raw[string(f)]
		if !ok {
			err := fmt.Errorf("fetch features: missing %q: %w", f, ErrUnexpectedResponse)
			s.logger.Error("Failed to fetch features", zap.Error(err))
			return err
		}
		next.Features[f] = enabled
	}

	s.mu.Lock()
	s.state = next
	s.observable.Publish(next.Clone())
	s.mu.Unlock()
	return nil
}

// ToggleFeature 请求后端切换功能，成功后只修改对应键
func (s *FeatureStore) ToggleFeature(ctx context.Context, feature models.Feature, enabled bool) error {
	if !feature.Valid() {
		return fmt.Errorf("toggle feature %q: %w", feature, ErrUnknownFeature)
	}

	if err := s.backend.ToggleFeature(ctx, feature, enabled); err != nil {
		err = backendError(fmt.Sprintf("toggle feature %s", feature), err)
		s.logger.Error("Failed to toggle feature",
			zap.String("feature", string(feature)),
			zap.Bool("enabled", enabled),
			zap.Error(err),
		)
		return err
	}

	s.mu.Lock()
	s.state.Features[feature] = enabled
	s.observable.Publish(s.state.Clone())
	s.mu.Unlock()

	s.logger.Info("Feature toggled",
		zap.String("feature", string(feature)),
		zap.Bool("enabled", enabled),
	)
	return nil
}

// State 当前开关状态（深拷贝）
func (s *FeatureStore) State() models.FeatureState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe 订阅开关变更
func (s *FeatureStore) Subscribe() (<-chan models.FeatureState, func()) {
	return s.observable.Subscribe()
}
