package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moviehub/internal/client/cli"
	"moviehub/internal/client/config"
	"moviehub/pkg/logger"
)

func main() {
	cfg, args, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(2)
	}

	level := "warn"
	if os.Getenv("MOVIEHUB_DEBUG") != "" {
		level = "debug"
	}
	zapLogger := logger.New(level, "console")
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, os.Stdin, os.Stdout, zapLogger)
	if err := app.Run(ctx, args); err != nil {
		if cli.IsUsageError(err) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
