// Command gateway-server runs the sensor gateway: it loads configuration,
// opens the persistence store, builds the node registry, and serves the
// HTTP surface while the periodic fetcher sweeps every registered sensor.
// Wiring order follows the teacher pack's main.go convention (meermanr's
// LightwaveRF bridge): logging first, then configuration, then the
// long-running collaborators, with signal-driven shutdown.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"sensorgate/gateway/resources"
	"sensorgate/internal/config"
	"sensorgate/internal/fetcher"
	"sensorgate/internal/httpapi"
	"sensorgate/internal/logging"
	"sensorgate/internal/store"

	"sensorgate/gateway/registry"
)

const shutdownGrace = 5 * time.Second

var isVerbose = flag.Bool("verbose", false, "enable debug-level logging")

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *isVerbose {
		level = slog.LevelDebug
	}
	log := logging.Setup(level)

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("could not open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := resources.New(log, config.SerialPortPath, config.I2CBusPath)

	descs, err := db.NodeDescriptors()
	if err != nil {
		log.Error("could not load node descriptors", "error", err)
		os.Exit(1)
	}
	reg, err := registry.Build(descs, res, res)
	if err != nil {
		log.Error("could not build node registry", "error", err)
		os.Exit(1)
	}

	f := &fetcher.Fetcher{Registry: reg, Store: db, Interval: cfg.PollInterval, Log: log}
	go f.Run(ctx)

	api := &httpapi.API{Registry: reg, Store: db, Log: log}
	r := mux.NewRouter()
	api.MountRoutes(r)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("gateway server listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
