package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"wildcats-food-express/internal/notsub"
	notsubcore "wildcats-food-express/internal/notsub/app/core"
	"wildcats-food-express/internal/order"
	ordercore "wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/xpkg/logger"
)

func main() {
	mode, serviceArgs := splitMode(os.Args[1:])
	if mode == "" {
		printUsage()
		os.Exit(1)
	}

	mylog := logger.New("wildcats-food-express", logger.Options{Level: os.Getenv("LOG_LEVEL")})
	defer mylog.Sync()

	var err error
	switch mode {
	case "order-service":
		err = order.Execute(context.Background(), mylog, serviceArgs)
	case "notification-subscriber":
		err = notsub.Execute(context.Background(), mylog, serviceArgs)
	default:
		fmt.Printf("Invalid mode: %s\n", mode)
		printUsage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, ordercore.ErrHelp) && !errors.Is(err, notsubcore.ErrHelp) {
		mylog.Sync()
		os.Exit(1)
	}
}

// splitMode extracts --mode from args and returns the rest for the service.
func splitMode(args []string) (string, []string) {
	var mode string
	var serviceArgs []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "--mode=") {
			mode = strings.TrimPrefix(arg, "--mode=")
		} else if arg == "--mode" && i+1 < len(args) {
			mode = args[i+1]
			i++ // skip the next argument
		} else {
			serviceArgs = append(serviceArgs, arg)
		}
	}
	return mode, serviceArgs
}

func printUsage() {
	fmt.Println("Usage: wildcats-food-express --mode=<service-mode> [service-specific-flags]")
	fmt.Println("Available modes:")
	fmt.Println("  order-service --port=8000 --max-concurrent=50 --storage=postgres|memory --config-path=config.yaml")
	fmt.Println("  notification-subscriber --prefetch=10 --config-path=config.yaml")
}
