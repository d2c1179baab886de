package httpapi

import (
	"context"
	"net/http"

	"github.com/xjzhong-027/sleepDetect/internal/models"
	"go.uber.org/zap"
)

// FeatureController 由 store.FeatureStore 实现
type FeatureController interface {
	FetchFeatures(ctx context.Context) error
	ToggleFeature(ctx context.Context, feature models.Feature, enabled bool) error
	State() models.FeatureState
}

type FeatureHandler struct {
	features FeatureController
	logger   *zap.Logger
}

func NewFeatureHandler(features FeatureController, logger *zap.Logger) *FeatureHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureHandler{features: features, logger: logger}
}

func (h *FeatureHandler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.features.State()))
}

func (h *FeatureHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.features.FetchFeatures(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.features.State()))
}

type toggleFeatureRequest struct {
	Feature string `json:"feature"`
	Enabled *bool  `json:"enabled"`
}

func (h *FeatureHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleFeatureRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if req.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, Fail("enabled is required"))
		return
	}
	if err := h.features.ToggleFeature(r.Context(), models.Feature(req.Feature), *req.Enabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.features.State()))
}
