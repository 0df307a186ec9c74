package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dkozyar/parlor/internal/infrastructure/configs"
	"github.com/dkozyar/parlor/internal/infrastructure/logging"
	"github.com/dkozyar/parlor/internal/infrastructure/metrics"
	"github.com/dkozyar/parlor/internal/infrastructure/ratelimiter"
	"github.com/dkozyar/parlor/internal/infrastructure/repository"
	"github.com/dkozyar/parlor/internal/infrastructure/tracing"
	"github.com/dkozyar/parlor/internal/infrastructure/ws"
	"github.com/dkozyar/parlor/internal/presentation/api"
	"github.com/dkozyar/parlor/internal/presentation/handler/health"
	"github.com/dkozyar/parlor/internal/presentation/handler/rooms"
)

func main() {
	logger := logging.NewLogger(logging.NewDefaultConfig())

	shutdownTracer, err := tracing.InitTracer(tracing.NewDefaultConfig("parlor"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	historyRepository := repository.NewHistoryRepository(cfg.History.Capacity)

	directory := ws.NewDirectory()

	signalingMetrics := metrics.NewSignaling(prometheus.DefaultRegisterer)
	metrics.RegisterOccupancy(prometheus.DefaultRegisterer,
		func() float64 { return float64(directory.Rooms()) },
		func() float64 { return float64(directory.Members()) },
	)

	relay := ws.NewRelay(directory, logger, signalingMetrics)
	lifecycle := ws.NewLifecycle(directory, relay, historyRepository, logger, signalingMetrics)

	roomHandler := rooms.NewHandler(*cfg, directory, lifecycle, logger, signalingMetrics)
	healthHandler := health.NewHandler()

	rateLimiter := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rateLimiter.Close()

	app := api.NewApplication(*cfg, *roomHandler, *healthHandler, logger, rateLimiter)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, err.Error(), nil)
	}
}
