package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/config"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/diagnostics"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/httpserver"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/logger"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/metrics"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/networking"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/reconciler"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/status"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	idpClientTimeout       = 10 * time.Second
	couchDBClientTimeout   = 15 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 15 * time.Second
	serverIdleTimeout      = 60 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciliation daemon",
		Long:  `Run the reconciliation daemon: periodically sync CouchDB jwt_keys from configured IdPs and serve /status, /healthz, and /metrics.`,
		RunE:  runServe,
	}

	cmd.Flags().String("config", "data/config.json", "Path to the JSON configuration file")
	cmd.Flags().String("address", "", "Override the configured listen address")

	if err := viper.BindPFlag("config", cmd.Flags().Lookup("config")); err != nil {
		logger.Fatalf("Failed to bind config flag: %v", err)
	}
	if err := viper.BindPFlag("address", cmd.Flags().Lookup("address")); err != nil {
		logger.Fatalf("Failed to bind address flag: %v", err)
	}

	return cmd
}

func runServe(_ *cobra.Command, _ []string) error {
	logger.Initialize(debugMode)

	bc := diagnostics.RecordStartup()
	logger.Infow("Starting couchdb-idp-updater", "instance_id", bc.InstanceID)

	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}
	if !cfg.HasCredentials() {
		logger.Warn("COUCHDB_USER/COUCHDB_PWD not set; CouchDB requests will be unauthenticated")
	}

	address := cfg.ListenAddress
	if override := viper.GetString("address"); override != "" {
		address = override
	}

	idpClient := networking.NewHTTPClientBuilder().
		WithTimeout(idpClientTimeout).
		Build()

	couchBuilder := networking.NewHTTPClientBuilder().WithTimeout(couchDBClientTimeout)
	if cfg.HasCredentials() {
		couchBuilder = couchBuilder.WithBasicAuth(cfg.CouchDBUser, cfg.CouchDBPassword)
	}
	couchHTTP := couchBuilder.Build()

	store := status.NewStore()
	m := metrics.New()

	rec := reconciler.New(cfg, idpClient, couchHTTP, store, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go rec.Run(ctx)

	exposedMetrics := m
	if !cfg.MetricsEnabled {
		exposedMetrics = nil
	}

	server := &http.Server{
		Addr:         address,
		Handler:      httpserver.New(store, exposedMetrics),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server forced to shutdown: %v", err)
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}

// ExitOnError is used by main to log err and terminate the process with
// exit status 1. cobra has already printed the error and usage text by the
// time Execute returns.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	logger.Errorf("%v", err)
	os.Exit(1)
}
