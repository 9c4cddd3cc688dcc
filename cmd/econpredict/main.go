package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"econ-predictor/internal/cfg"
	"econ-predictor/internal/common"
	"econ-predictor/internal/metrics"
	"econ-predictor/internal/ml"
	"econ-predictor/internal/service"
	"econ-predictor/internal/storage"
	"econ-predictor/internal/warehouse"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (overrides CONFIG_FILE)")
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *configPath != "" {
		os.Setenv(common.EnvConfigFile, *configPath)
	}
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *logLevel != "" {
		c.LogLevel = *logLevel
	}
	setupLogging(c.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	model := trainModel(ctx, c, mw)

	sink, closeSink := initializeSink(ctx, c)

	svc := service.New(model, sink, mw, service.Config{
		MaxRetries: c.PersistRetries,
		RetryDelay: c.PersistRetryDelay,
	})

	startMetricsServer(ctx, c)
	api := startAPIServer(c, svc, model)

	done := make(chan error, 1)
	go func() {
		_, err := service.NewSession(svc, os.Stdin, os.Stdout).Run(ctx)
		done <- err
	}()

	exitCode := 0
	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("session ended with error")
			exitCode = 1
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	if api != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown prediction API")
		}
		shutdownCancel()
	}
	cancel()
	closeSink()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// trainModel loads the training table and fits the model. Any failure here
// is fatal.
func trainModel(ctx context.Context, c cfg.Settings, mw *metrics.MetricsWrapper) *ml.TrainedService {
	src, closeSource, err := warehouse.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("training source init failed")
	}
	defer closeSource()

	records, dropped, err := warehouse.LoadTrainingSet(ctx, src)
	if err != nil {
		log.Fatal().Err(err).Msg("training data load failed")
	}
	mw.DroppedRowsSet(float64(dropped))

	model, err := ml.Train(records, ml.TrainConfig{
		ModelID: c.ModelID,
		Metrics: mw,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("model training failed")
	}
	return model
}

// initializeSink opens the configured audit sink. A nil sink disables
// persistence.
func initializeSink(ctx context.Context, c cfg.Settings) (service.Sink, func()) {
	noop := func() {}

	switch c.SinkKind {
	case common.KindBolt:
		store, err := storage.New(c.DataPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", c.DataPath).Msg("storage initialization failed")
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close storage")
			}
		}

	case common.KindMySQL, common.KindSQLite:
		db, err := storage.OpenSQL(c.SinkKind, c.SinkDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sink database open failed")
		}
		sink, err := storage.NewSQLSink(db, c.SinkKind, c.SinkTable)
		if err != nil {
			db.Close()
			log.Fatal().Err(err).Msg("sink init failed")
		}
		if err := sink.EnsureTable(ctx); err != nil {
			db.Close()
			log.Fatal().Err(err).Str("table", c.SinkTable).Msg("sink table init failed")
		}
		return sink, func() {
			if err := sink.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close sink")
			}
		}

	default:
		log.Info().Msg("no prediction sink configured, persistence disabled")
		return nil, noop
	}
}

// startMetricsServer serves Prometheus metrics on METRICS_PORT when set.
func startMetricsServer(ctx context.Context, c cfg.Settings) {
	if c.MetricsPort == 0 {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to shutdown metrics server")
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting metrics server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// startAPIServer serves the prediction API on SERVER_PORT when set.
func startAPIServer(c cfg.Settings, svc *service.Service, model *ml.TrainedService) *service.Server {
	if c.ServerPort == 0 {
		return nil
	}

	api := service.NewServer(svc, model, prometheus.DefaultGatherer, c.ServerPort)
	go func() {
		if err := api.Start(); err != nil {
			log.Error().Err(err).Msg("prediction API failed")
		}
	}()
	return api
}
