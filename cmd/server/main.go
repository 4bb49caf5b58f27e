package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CampusOntology.api/internal/config"
	"CampusOntology.api/internal/controller"
	"CampusOntology.api/internal/geometry"
	"CampusOntology.api/internal/logging"
	"CampusOntology.api/internal/metrics"
	"CampusOntology.api/internal/middleware"
	"CampusOntology.api/internal/repository"
	"CampusOntology.api/internal/routes"
	"CampusOntology.api/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	log.Logger = logger

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	m := metrics.NewMetrics()

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Ontology.FetchTimeout)
	graph, err := repository.NewLoader(cfg.Ontology.FetchTimeout, logger).Load(loadCtx, cfg.Ontology.Path)
	cancelLoad()
	if err != nil {
		return err
	}
	m.SetGraphTriples(graph.Len())
	store := repository.NewGraphStore(graph)

	converter, err := geometry.NewConverter(geometry.EPSGWebMercator, geometry.EPSGWGS84, logger,
		geometry.WithFailureCounter(m.GeometryFailures))
	if err != nil {
		return err
	}

	var opts []service.Option
	if live, closeLive := liveOccupancy(cfg.InfluxDB, logger, m); live != nil {
		defer closeLive()
		opts = append(opts, live)
	}

	campusService := service.NewCampusService(store, converter, logger, opts...)
	campusController := controller.NewCampusController(campusService, logger)

	router := routes.NewRouter(campusController, routes.Options{
		StaticDir: cfg.Server.StaticDir,
		Graph:     store,
		Metrics:   m.Handler(),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      middleware.CORS(middleware.Observe(logger, m)(router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	logger.Info().
		Str("addr", httpServer.Addr).
		Str("ontology", cfg.Ontology.Path).
		Bool("live_occupancy", cfg.InfluxDB.Enabled()).
		Msg("Listening")

	select {
	case sig := <-signalChan:
		logger.Info().Str("signal", sig.String()).Msg("Received signal, initiating graceful shutdown")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("HTTP server shutdown complete")
	return nil
}

// liveOccupancy connects to InfluxDB when it is configured and passes its
// startup checks. Otherwise it returns nil and occupancy comes from the
// ontology observations alone.
func liveOccupancy(cfg config.InfluxDBConfig, logger zerolog.Logger, recorder service.LookupRecorder) (service.Option, func()) {
	if !cfg.Enabled() {
		return nil, nil
	}
	influx := repository.NewInfluxOccupancyRepository(cfg.URL, cfg.Token, cfg.Org, cfg.Bucket, cfg.Timeout, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := influx.CheckHealth(ctx); err != nil {
		logger.Warn().Err(err).Str("url", cfg.URL).Msg("InfluxDB unreachable, live occupancy disabled")
		influx.Close()
		return nil, nil
	}
	if err := influx.CheckBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("Occupancy bucket unavailable, live occupancy disabled")
		influx.Close()
		return nil, nil
	}

	logger.Info().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Dur("timeout", cfg.Timeout).Msg("Live occupancy enabled")
	return service.WithLiveOccupancy(service.NewReaderOccupancy(influx, recorder)), influx.Close
}
