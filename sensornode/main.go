package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/diag"
	"github.com/itohio/sensornode/pkg/node"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated sensors instead of the serial sensor board")
	)
	flag.Parse()

	if err := run(*configFlag, *portFlag, *mockFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, port string, mock bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port != "" {
		cfg.Serial.Port = port
	}

	logger, err := diag.New(os.Stderr, cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	hw, err := node.NewHardware(cfg, mock, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := hw.Close(); err != nil {
			logger.Warn("Failed to release hardware", slog.Any("error", err))
		}
	}()

	n, err := node.New(cfg, hw.Deps(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return n.Run(ctx)
}
