package order

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"wildcats-food-express/internal/order/api/http"
	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/xpkg/config"
	"wildcats-food-express/internal/xpkg/logger"
	"wildcats-food-express/internal/xpkg/telemetry"
)

const serviceName = "order-service"

type params struct {
	orderParams *core.OrderParams
	configPath  string
	cfg         *config.Config
}

// Execute starts order service
func Execute(ctx context.Context, mylog logger.Logger, args []string) error {
	newCtx, close := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer close()

	params, err := parseParams(args)
	if err != nil {
		if !errors.Is(err, core.ErrHelp) {
			mylog.Action("command_parse_failed").Error("Invalid command received", err)
		}
		return err
	}
	if err = validateParams(params); err != nil {
		mylog.Action("command_validation_failed").Error("Invalid command received", err)
		return err
	}
	mylog.Action("command_validation_completed").Info("Successfully validate params")

	tel, err := telemetry.Setup(ctx, serviceName, params.cfg.Telemetry.Endpoint)
	if err != nil {
		mylog.Action("telemetry_setup_failed").Error("Failed to set up telemetry", err)
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			mylog.Action("telemetry_shutdown_failed").Error("Failed to flush telemetry", err)
		}
	}()

	mylog = logger.New(serviceName, logger.Options{
		Level:          params.cfg.Server.LogLevel,
		LoggerProvider: tel.Logs,
	})
	defer mylog.Sync()

	metrics, err := telemetry.NewMetrics(tel.Meter)
	if err != nil {
		mylog.Action("metrics_setup_failed").Error("Failed to register metrics", err)
		return err
	}

	server := http.NewServer(newCtx, context.Background(), params.cfg, params.orderParams, tel, metrics, mylog)

	// Run server in goroutine
	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- server.Run()
	}()

	// Wait for signal or server crash
	select {
	case <-newCtx.Done():
		mylog.Action("shutdown_signal_received").Info("Shutdown signal received")
		return server.Stop(context.Background())
	case err := <-runErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			mylog.Action("order_service_failed").Error("Server failed unexpectedly", err)
			_ = server.Stop(context.Background())
			return err
		}
		mylog.Action("server_stopped").Info("Server exited normally")
		return server.Stop(context.Background())
	}
}

// Helper functions to validate cli params

// parseParams parse params from terminal
func parseParams(args []string) (*params, error) {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")

	port := fs.Int("port", 8000, "Port to run the order service")
	maxConcurrent := fs.Int("max-concurrent", 50, "Max concurrent requests")
	storage := fs.String("storage", core.StoragePostgres, "Storage backend: postgres or memory")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, core.ErrHelp
		}
		return nil, core.ErrParseCmd
	}

	if *showHelp {
		fs.Usage()
		return nil, core.ErrHelp
	}

	return &params{
		orderParams: &core.OrderParams{
			Port:          *port,
			MaxConcurrent: *maxConcurrent,
			Storage:       *storage,
		},
		configPath: *configPath,
	}, nil
}

// validateParams validates params
func validateParams(params *params) error {
	cfg, err := config.LoadConfig(params.configPath)
	if err != nil {
		return err
	}
	params.cfg = cfg

	orderParams := params.orderParams
	if orderParams.Port <= 0 || orderParams.Port >= 65536 {
		return fmt.Errorf("port must be in [1: 65,535]: %d", orderParams.Port)
	}

	if orderParams.MaxConcurrent <= 0 {
		return fmt.Errorf("max number of concurrent requests must be positive: %d", orderParams.MaxConcurrent)
	}

	if orderParams.Storage != core.StoragePostgres && orderParams.Storage != core.StorageMemory {
		return fmt.Errorf("unknown storage %q, use %s or %s", orderParams.Storage, core.StoragePostgres, core.StorageMemory)
	}

	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("access token secret is not configured (auth.access_secret or ACCESS_TOKEN_SECRET)")
	}

	return nil
}
