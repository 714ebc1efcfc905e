// Package server wires configuration, the store, services and the HTTP
// router together and runs the library server until it is signalled to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/config"
	"github.com/dmitrijs2005/booklib/internal/server/httpapi"
	"github.com/dmitrijs2005/booklib/internal/server/pages"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/booklib/internal/server/services"
	"github.com/dmitrijs2005/booklib/internal/server/session"
	"github.com/gin-gonic/gin"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  *repomanager.Lazy
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	tokens, err := auth.NewTokenService(c.AccessTokenSecret, c.RefreshTokenSecret, c.AccessTokenTTL, c.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewPasswordHasher(auth.DefaultPasswordCost)

	resolver, err := pages.NewResolver(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("page resolver init error: %w", err)
	}

	store := repomanager.NewLazy(c.DatabaseDSN, logger)

	transport := session.NewTransport(session.Options{
		AccessMaxAge:  c.AccessCookieMaxAge,
		RefreshMaxAge: c.RefreshTokenTTL,
		Domain:        c.CookieDomain,
		Secure:        c.IsProduction(),
	})

	h := httpapi.NewHandler(
		services.NewAuthService(store, tokens, hasher, logger),
		services.NewUserService(store, hasher, logger),
		services.NewProgressService(store, logger),
		services.NewBookService(store, resolver, logger),
		transport,
		logger,
	)

	if c.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	return &App{
		config: c,
		logger: logger,
		store:  store,
		server: httpapi.NewServer(c.Address, httpapi.NewRouter(h), logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled or a termination signal arrives, then
// shuts the HTTP server down and closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	runErr := app.server.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "http server failed", "error", runErr)
	}

	if err := app.store.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return runErr
}
