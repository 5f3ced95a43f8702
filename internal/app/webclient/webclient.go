// Package webclient собирает веб-клиент ассистента: хранилище сессий,
// шлюз к бэкенду, сервисы представлений и HTTP-сервер.
package webclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/auto-assistant-client/internal/cache"
	"github.com/magabrotheeeer/auto-assistant-client/internal/config"
	"github.com/magabrotheeeer/auto-assistant-client/internal/gateway"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/jwt"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/assistant"
	authservice "github.com/magabrotheeeer/auto-assistant-client/internal/services/auth"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/ecuflash"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/mounts"
	subservice "github.com/magabrotheeeer/auto-assistant-client/internal/services/subscription"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/telemetry"
	"github.com/magabrotheeeer/auto-assistant-client/internal/session"
	"github.com/magabrotheeeer/auto-assistant-client/internal/web"
)

// App веб-клиент целиком: сервер и зависимости с временем жизни процесса.
type App struct {
	server *http.Server
	logger *slog.Logger
}

// New собирает приложение из конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var kv session.KV
	if cfg.AddressRedis != "" {
		cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		kv = cacheRedis
	} else {
		logger.Warn("redis address is empty, sessions are kept in process memory")
		kv = cache.NewMemory()
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	sessions := session.New(kv, jwtMaker, cfg.Session.TTL, logger)
	gw := gateway.New(cfg.Backend.Address, cfg.Backend.Timeout)

	authService, err := authservice.New(cfg.DemoUser, jwtMaker, logger)
	if err != nil {
		return nil, err
	}
	telemetryService := telemetry.New(gw, logger)
	assistantService := assistant.New(gw, logger)
	ecuflashService := ecuflash.New(gw, logger)
	subscriptionService := subservice.New(gw, jwtMaker, logger)

	// Реестр представлений: навигация и очистка сессии освобождают
	// ресурсы, привязанные к сессии.
	registry := mounts.NewRegistry(logger)
	registry.Register(web.ViewOBD2, telemetryService.Disconnect)
	registry.Register(web.ViewNLP, assistantService.Reset)
	registry.Register(web.ViewECUFlash, ecuflashService.Reset)
	sessions.OnClear(registry.Release)

	pages, err := web.New(logger, registry)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, &Services{
		Sessions:     sessions,
		Gateway:      gw,
		Auth:         authService,
		Telemetry:    telemetryService,
		Assistant:    assistantService,
		ECUFlash:     ecuflashService,
		Subscription: subscriptionService,
		Pages:        pages,
	})
	router.Get("/docs/*", httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{server: srv, logger: logger}, nil
}

// Run запускает сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}
