package handler

import (
	"go.uber.org/zap"

	"github.com/fitquest/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	tracker *service.Tracker
	health  *service.HealthService
	logger  *zap.Logger
}

// NewAPI constructs a handler set around the tracker and health services.
func NewAPI(tracker *service.Tracker, health *service.HealthService, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{tracker: tracker, health: health, logger: logger}
}
