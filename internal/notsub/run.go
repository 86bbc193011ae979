package notsub

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	brokermessage "wildcats-food-express/internal/notsub/adapter/broker_message"
	"wildcats-food-express/internal/notsub/adapter/consumer"
	"wildcats-food-express/internal/notsub/app/core"
	"wildcats-food-express/internal/xpkg/config"
	"wildcats-food-express/internal/xpkg/logger"
)

const serviceName = "notification-subscriber"

type params struct {
	configPath string
	prefetch   int
	cfg        *config.Config
}

// Execute starts notification subscriber
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
	mylog.Action("command_parse_completed").Debug("Received params", "config_path", params.configPath)

	if err = validateParams(params); err != nil {
		mylog.Action("command_validation_failed").Error("Invalid command received", err)
		return err
	}
	mylog.Action("command_validation_completed").Info("Successfully validate params")

	mylog = logger.New(serviceName, logger.Options{Level: params.cfg.Server.LogLevel})
	defer mylog.Sync()

	mb, err := brokermessage.New(params.cfg.RMQ, mylog, params.prefetch)
	if err != nil {
		mylog.Action("rabbitmq_connection_failed").Error("Failed to connect to RabbitMQ", err)
		return err
	}
	mylog.Action("rabbitmq_connected").Info("Connected to RabbitMQ", "exchange", params.cfg.RMQ.Exchange)

	notsub := consumer.NewNotification(newCtx, mb, os.Stdout, mylog)
	if err := notsub.Run(serviceName); err != nil {
		mylog.Action("notsub_run_failed").Error("Notification subscriber service stopped with error", err)
		_ = mb.Close()
		return err
	}
	return notsub.Stop(ctx)
}

// Helper functions to validate cli params

// parseParams parse params from terminal
func parseParams(args []string) (*params, error) {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")
	prefetch := fs.Int("prefetch", 10, "RabbitMQ prefetch count")

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
		configPath: *configPath,
		prefetch:   *prefetch,
	}, nil
}

// validateParams validates params
func validateParams(params *params) error {
	cfg, err := config.LoadConfig(params.configPath)
	if err != nil {
		return err
	}
	params.cfg = cfg

	if params.prefetch <= 0 {
		return fmt.Errorf("prefetch must be positive: %d", params.prefetch)
	}
	if cfg.RMQ == nil || cfg.RMQ.Exchange == "" {
		return fmt.Errorf("rabbitmq exchange is not configured")
	}
	return nil
}
