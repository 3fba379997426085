package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tiersweep/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

const (
	exitFatal          = 1
	exitPartialFailure = 2
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		if errors.Is(err, errPartialFailure) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitPartialFailure)
		}
		for _, line := range formatCLIError(err) {
			fmt.Fprintln(os.Stderr, line)
		}
		os.Exit(exitFatal)
	}
}
