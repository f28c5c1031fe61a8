package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dataway/truenas-cert-sync/internal/cmd"
	"github.com/dataway/truenas-cert-sync/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Run(ctx, os.Args[1:]...); err != nil {
		logging.L.Error().Err(err).Msg("truenas-cert-sync failed")
		cancel()
		os.Exit(1)
	}
}
