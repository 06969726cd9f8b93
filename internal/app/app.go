package app

import (
	"context"
	"net/http"

	"github.com/shiikun-cn/tarot-mcp/internal/config"
)

// App owns the HTTP server plus the shutdown hook for whichever used-set
// backend was opened at startup.
type App struct {
	httpServer *http.Server
	closeStore func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, closeStore, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppPort,
			Handler: router,
		},
		closeStore: closeStore,
	}, nil
}

func (a *App) Run() error {
	return a.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, then releases the backend connection
// if one was opened.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}
