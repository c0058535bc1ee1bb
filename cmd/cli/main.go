package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"support-bot/internal/app"
	"support-bot/internal/config"
	"support-bot/internal/console"
	"support-bot/internal/logger"
	"support-bot/internal/relayclient"
)

func main() {
	if err := app.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.LoadClient()

	api := flag.String("api", cfg.RelayURL, "relay base URL")
	timeout := flag.Duration("timeout", cfg.RequestTimeout, "per-request timeout (0 waits until interrupted)")
	flag.Parse()

	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := relayclient.New(*api, *timeout)
	log.Debug("starting console", "relay", client.BaseURL(), "timeout", timeout.String())

	if err := console.New(client, os.Stdin, os.Stdout, log).Run(ctx); err != nil {
		log.Error("console stopped", "err", err)
		stop()
		os.Exit(1)
	}
}
