// Package app is the composition root: it wires storage, services and the
// HTTP router together with manual dependency injection.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/api/handlers"
	"eventdesk.io/eventdesk/internal/api/middleware"
	"eventdesk.io/eventdesk/internal/audit"
	"eventdesk.io/eventdesk/internal/catalog"
	"eventdesk.io/eventdesk/internal/config"
	"eventdesk.io/eventdesk/internal/ledger"
	"eventdesk.io/eventdesk/internal/pkg/worker"
	"eventdesk.io/eventdesk/internal/repository/mongodb"
	"eventdesk.io/eventdesk/internal/users"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine
	Store  *mongodb.Store
	Pool   *worker.Pool
}

// Bootstrap initializes all dependencies.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	store, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	pool, err := worker.NewPool(ctx, worker.Config{Size: cfg.Worker.PoolSize})
	if err != nil {
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("init worker pool: %w", err)
	}

	trail := audit.NewTrail(store.Activity)

	deps := handlers.ServerDeps{
		JWTCfg: middleware.JWTConfig{
			SigningKey: []byte(cfg.Security.JWTSecret),
			Issuer:     cfg.Security.JWTIssuer,
			ExpiresIn:  cfg.Security.TokenTTL,
		},
		Catalog: catalog.New(store.Events, store.Registrations, trail, pool),
		Ledger:  ledger.New(store.Registrations, store.Events, trail),
		Users:   users.NewService(store.Users, trail),
		Trail:   trail,
		Health:  store,
	}
	server := handlers.NewServer(deps)

	return &Application{
		Config: cfg,
		Router: newRouter(cfg, server, deps.JWTCfg.SigningKey, store.Users),
		Store:  store,
		Pool:   pool,
	}, nil
}
