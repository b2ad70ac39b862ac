package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"eventdesk.io/eventdesk/internal/pkg/logger"
)

// Shutdown gracefully shuts down all application components. The worker pool
// drains first so no view-count or audit task outlives the storage client.
func (a *Application) Shutdown() {
	if a.Pool != nil {
		a.Pool.Shutdown()
	}
	if a.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Store.Close(ctx); err != nil {
			logger.Error("failed to close storage", zap.Error(err))
		}
	}
}
