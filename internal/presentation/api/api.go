package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dkozyar/parlor/internal/infrastructure/configs"
	"github.com/dkozyar/parlor/internal/infrastructure/logging"
	"github.com/dkozyar/parlor/internal/infrastructure/metrics"
	"github.com/dkozyar/parlor/internal/infrastructure/ratelimiter"
	healthHandler "github.com/dkozyar/parlor/internal/presentation/handler/health"
	roomHandler "github.com/dkozyar/parlor/internal/presentation/handler/rooms"
)

type Application struct {
	config        configs.Config
	roomHandler   roomHandler.Handler
	healthHandler healthHandler.Handler
	logger        logging.Logger
	ratelimiter   ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	roomHandler roomHandler.Handler,
	healthHandler healthHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:        config,
		roomHandler:   roomHandler,
		healthHandler: healthHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	// Websocket routes stay outside the timeout group: the request
	// context lives as long as the connection.
	r.Get("/ws", app.roomHandler.ConnectHandler)
	r.Get("/api/rooms/{roomKey}/join", app.roomHandler.JoinRoomHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/api", func(r chi.Router) {
			r.Get("/rooms/{roomKey}", app.roomHandler.GetRoomHandler)

			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
		})

		r.Handle("/metrics", metrics.Handler())
	})

	return otelhttp.NewHandler(r, "parlor.http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
